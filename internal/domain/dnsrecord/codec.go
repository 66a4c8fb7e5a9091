package dnsrecord

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Encode serializes every non-volatile field of r into the single string stored
// in the record_data column. TTL is never encoded.
//
// Single-value types store the value as is. MX and SRV zero-pad their numeric
// fields so that a plain string sort orders them numerically. TXT texts are
// sorted, so the encoding is independent of the order the resolver returned.
func Encode(r Record) string {
	switch v := r.(type) {
	case A:
		return v.IP
	case AAAA:
		return v.IPv6
	case CNAME:
		return v.Target
	case NS:
		return v.Target
	case PTR:
		return v.Target
	case MX:
		return fmt.Sprintf("%05d|%s", v.Priority, v.Target)
	case TXT:
		return joinEscaped(sortedCopy(v.Text), "|", escapeList)
	case SRV:
		return fmt.Sprintf("%05d|%05d|%05d|%s", v.Priority, v.Weight, v.Port, v.Target)
	case SOA:
		return joinEscaped([]string{v.PrimaryNameserver, v.ResponsibleEmail}, "|", escapeList)
	case CAA:
		return fmt.Sprintf("%d|%s|%s", v.Flags, escape(v.Tag), v.Value)
	case Unknown:
		return strings.Join(fieldPairs(v.Fields), "|")
	}
	return ""
}

// Decode rebuilds a record from its stored host, type and encoded value.
// The returned record has a zero TTL. Types without a dedicated variant decode
// to Unknown. An empty text list, or an empty Unknown value list, is stored as
// the empty string and decodes to a single empty string.
func Decode(host string, typ Type, encoded string) (Record, error) {
	hdr := Header{Host: host}
	fail := func(err error) (Record, error) {
		return nil, &DecodeError{Host: host, Type: typ, Value: encoded, Err: err}
	}

	switch typ {
	case TypeA:
		return A{Hdr: hdr, IP: encoded}, nil
	case TypeAAAA:
		return AAAA{Hdr: hdr, IPv6: encoded}, nil
	case TypeCNAME:
		return CNAME{Hdr: hdr, Target: encoded}, nil
	case TypeNS:
		return NS{Hdr: hdr, Target: encoded}, nil
	case TypePTR:
		return PTR{Hdr: hdr, Target: encoded}, nil
	case TypeMX:
		pri, target, ok := strings.Cut(encoded, "|")
		if !ok {
			return fail(errors.New("missing priority separator"))
		}
		priority, err := parseUint16(pri)
		if err != nil {
			return fail(fmt.Errorf("priority: %w", err))
		}
		return MX{Hdr: hdr, Target: target, Priority: priority}, nil
	case TypeTXT:
		texts, err := splitEscaped(encoded, '|')
		if err != nil {
			return fail(err)
		}
		return TXT{Hdr: hdr, Text: texts}, nil
	case TypeSRV:
		parts := strings.SplitN(encoded, "|", 4)
		if len(parts) != 4 {
			return fail(fmt.Errorf("expected 4 fields, got %d", len(parts)))
		}
		nums := make([]uint16, 3)
		for i, name := range []string{"priority", "weight", "port"} {
			n, err := parseUint16(parts[i])
			if err != nil {
				return fail(fmt.Errorf("%s: %w", name, err))
			}
			nums[i] = n
		}
		return SRV{Hdr: hdr, Priority: nums[0], Weight: nums[1], Port: nums[2], Target: parts[3]}, nil
	case TypeSOA:
		parts, err := splitEscaped(encoded, '|')
		if err != nil {
			return fail(err)
		}
		if len(parts) != 2 {
			return fail(fmt.Errorf("expected 2 fields, got %d", len(parts)))
		}
		return SOA{Hdr: hdr, PrimaryNameserver: parts[0], ResponsibleEmail: parts[1]}, nil
	case TypeCAA:
		flagStr, rest, ok := strings.Cut(encoded, "|")
		if !ok {
			return fail(errors.New("missing flags separator"))
		}
		flags, err := strconv.ParseUint(flagStr, 10, 8)
		if err != nil {
			return fail(fmt.Errorf("flags: %w", err))
		}
		i := indexUnescaped(rest, '|')
		if i < 0 {
			return fail(errors.New("missing tag separator"))
		}
		tag, err := unescape(rest[:i])
		if err != nil {
			return fail(err)
		}
		return CAA{Hdr: hdr, Flags: uint8(flags), Tag: tag, Value: rest[i+1:]}, nil
	}

	fields, err := decodeFields(encoded)
	if err != nil {
		return fail(err)
	}
	return Unknown{Hdr: hdr, RRType: string(typ), Fields: fields}, nil
}

// Equal reports whether a and b describe the same record, ignoring TTL.
// TXT texts compare as a set.
func Equal(a, b Record) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Type() == b.Type() &&
		a.Header().Host == b.Header().Host &&
		Encode(a) == Encode(b)
}

// fieldPairs renders fields as sorted, escaped key:value pairs with list values
// joined by commas. Reserved keys are skipped.
func fieldPairs(fields map[string][]string) []string {
	pairs := make([]string, 0, len(fields))
	for k, vals := range fields {
		if reservedField(k) {
			continue
		}
		pairs = append(pairs, escape(k)+":"+joinEscaped(vals, ",", escape))
	}
	sort.Strings(pairs)
	return pairs
}

func decodeFields(encoded string) (map[string][]string, error) {
	if encoded == "" {
		return nil, nil
	}
	if indexUnescaped(encoded, ':') < 0 {
		// Rows written before fields were stored as pairs hold a bare value.
		v, err := unescape(encoded)
		if err != nil {
			return nil, err
		}
		return map[string][]string{"target": {v}}, nil
	}

	pairs, err := splitRaw(encoded, '|')
	if err != nil {
		return nil, err
	}
	fields := make(map[string][]string, len(pairs))
	for _, pair := range pairs {
		i := indexUnescaped(pair, ':')
		if i < 0 {
			return nil, fmt.Errorf("field %q is not a key:value pair", pair)
		}
		key, err := unescape(pair[:i])
		if err != nil {
			return nil, err
		}
		vals, err := splitEscaped(pair[i+1:], ',')
		if err != nil {
			return nil, err
		}
		fields[key] = vals
	}
	return fields, nil
}

func parseUint16(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, err
	}
	return uint16(n), nil
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
