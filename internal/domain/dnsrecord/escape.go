package dnsrecord

import (
	"errors"
	"strings"
)

const escapeChar = '\\'

var errDanglingEscape = errors.New("dangling escape character")

// escape prefixes every separator and escape character in s with a backslash.
func escape(s string) string {
	return escapeAny(s, `\|,:`)
}

// escapeList escapes only what a |-separated list needs, so TXT and SOA
// values keep the bytes earlier rows were stored with.
func escapeList(s string) string {
	return escapeAny(s, `\|`)
}

func escapeAny(s, special string) string {
	if !strings.ContainsAny(s, special) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(special, s[i]) >= 0 {
			sb.WriteByte(escapeChar)
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

func unescape(s string) (string, error) {
	if !strings.ContainsRune(s, escapeChar) {
		return s, nil
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == escapeChar {
			if i+1 >= len(s) {
				return "", errDanglingEscape
			}
			i++
		}
		sb.WriteByte(s[i])
	}
	return sb.String(), nil
}

// joinEscaped escapes every part with esc and joins them with sep.
func joinEscaped(parts []string, sep string, esc func(string) string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = esc(p)
	}
	return strings.Join(escaped, sep)
}

// splitRaw splits s on unescaped occurrences of sep. Escapes are kept.
func splitRaw(s string, sep byte) ([]string, error) {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case escapeChar:
			if i+1 >= len(s) {
				return nil, errDanglingEscape
			}
			i++
		case sep:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:]), nil
}

// splitEscaped splits s on unescaped occurrences of sep and unescapes the parts.
func splitEscaped(s string, sep byte) ([]string, error) {
	parts, err := splitRaw(s, sep)
	if err != nil {
		return nil, err
	}
	for i, p := range parts {
		if parts[i], err = unescape(p); err != nil {
			return nil, err
		}
	}
	return parts, nil
}

// indexUnescaped returns the index of the first unescaped sep in s, or -1.
func indexUnescaped(s string, sep byte) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case escapeChar:
			i++
		case sep:
			return i
		}
	}
	return -1
}
