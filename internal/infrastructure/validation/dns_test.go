package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateLabel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		// Valid labels
		{"valid simple label", "myhost", nil},
		{"valid with numbers", "host123", nil},
		{"valid with hyphens", "my-host-name", nil},
		{"uppercase letters", "MyHost", nil},
		{"single character", "a", nil},
		{"starts with number", "1host", nil},
		{"consecutive hyphens", "xn--bcher-kva", nil},

		// Invalid labels
		{"empty label", "", ErrEmptyLabel},
		{"starts with hyphen", "-hostname", ErrLabelHyphen},
		{"ends with hyphen", "hostname-", ErrLabelHyphen},
		{"contains spaces", "my host", ErrInvalidLabel},
		{"contains underscore", "my_host", ErrInvalidLabel},
		{"contains special chars", "my@host", ErrInvalidLabel},
		{"too long", strings.Repeat("a", 64), ErrLabelTooLong},
		{"only hyphens", "---", ErrLabelHyphen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLabel(tt.input)
			if tt.wantErr == nil && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateDomain(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"apex", "example.com", nil},
		{"subdomain", "www.example.co.uk", nil},
		{"trailing dot", "example.com.", nil},
		{"empty", "", ErrDomainEmpty},
		{"root only", ".", ErrDomainEmpty},
		{"single label", "localhost", ErrDomainSingleLabel},
		{"empty label", "example..com", ErrEmptyLabel},
		{"bad label", "exa_mple.com", ErrInvalidLabel},
		{"too long", strings.Repeat("abcdefghi.", 26) + "com", ErrDomainTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDomain(tt.input)
			if tt.wantErr == nil && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
