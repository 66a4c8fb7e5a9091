package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidLabel indicates that a label contains characters outside letters, digits and hyphens
	ErrInvalidLabel = errors.New("label must contain only letters, digits and hyphens")

	// ErrLabelTooLong indicates that a label exceeds 63 characters
	ErrLabelTooLong = errors.New("label exceeds maximum length of 63 characters")

	// ErrEmptyLabel indicates an empty label, e.g. "a..b"
	ErrEmptyLabel = errors.New("label cannot be empty")

	// ErrLabelHyphen indicates that a label starts or ends with a hyphen
	ErrLabelHyphen = errors.New("label cannot start or end with a hyphen")

	// ErrDomainEmpty indicates that no domain was given
	ErrDomainEmpty = errors.New("domain cannot be empty")

	// ErrDomainTooLong indicates that a domain exceeds 253 characters
	ErrDomainTooLong = errors.New("domain exceeds maximum length of 253 characters")

	// ErrDomainSingleLabel indicates a bare top-level name such as "com"
	ErrDomainSingleLabel = errors.New("domain must have at least two labels")
)

// labelRegex matches RFC 1123 host labels, case-insensitively.
var labelRegex = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?$`)

// ValidateLabel validates one label of a domain name
func ValidateLabel(label string) error {
	if label == "" {
		return ErrEmptyLabel
	}
	if len(label) > 63 {
		return ErrLabelTooLong
	}
	if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
		return ErrLabelHyphen
	}
	if !labelRegex.MatchString(label) {
		return ErrInvalidLabel
	}
	return nil
}

// ValidateDomain validates the name of a monitored domain. A single trailing
// dot is accepted.
func ValidateDomain(domain string) error {
	domain = strings.TrimSuffix(domain, ".")
	if domain == "" {
		return ErrDomainEmpty
	}
	if len(domain) > 253 {
		return ErrDomainTooLong
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return ErrDomainSingleLabel
	}
	for _, label := range labels {
		if err := ValidateLabel(label); err != nil {
			return fmt.Errorf("%q: %w", label, err)
		}
	}
	return nil
}
