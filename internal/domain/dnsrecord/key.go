package dnsrecord

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CanonicalKey returns the identity of r: its type, host and type-specific
// value fields. TTL is never part of the key. TXT texts are sorted before
// hashing and Unknown fields are rendered as sorted key:value pairs, so the key
// does not depend on the order in which the resolver returned them.
func CanonicalKey(r Record) string {
	parts := []string{string(r.Type()), r.Header().Host}

	switch v := r.(type) {
	case A:
		parts = append(parts, v.IP)
	case AAAA:
		parts = append(parts, v.IPv6)
	case CNAME:
		parts = append(parts, v.Target)
	case NS:
		parts = append(parts, v.Target)
	case PTR:
		parts = append(parts, v.Target)
	case MX:
		parts = append(parts, v.Target, strconv.Itoa(int(v.Priority)))
	case TXT:
		parts = append(parts, digest(joinEscaped(sortedCopy(v.Text), "|", escape)))
	case SRV:
		parts = append(parts, v.Target,
			strconv.Itoa(int(v.Port)), strconv.Itoa(int(v.Priority)), strconv.Itoa(int(v.Weight)))
	case SOA:
		parts = append(parts, v.PrimaryNameserver, v.ResponsibleEmail)
	case CAA:
		parts = append(parts, strconv.Itoa(int(v.Flags)), v.Tag, v.Value)
	case Unknown:
		parts = append(parts, digest(strings.Join(fieldPairs(v.Fields), "|")))
	}

	return joinEscaped(parts, "|", escape)
}

// SlotKey identifies the owner name and type a record occupies. Two records
// with different canonical keys in the same slot are versions of one another.
func SlotKey(r Record) string {
	return joinEscaped([]string{string(r.Type()), r.Header().Host}, "|", escape)
}

func digest(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// PrimaryValue returns the value records of the same type are ordered by.
func PrimaryValue(r Record) string {
	u, ok := r.(Unknown)
	if !ok {
		return Encode(r)
	}
	for _, name := range []string{"target", "ip", "ipv6", "value", "txt"} {
		if vals, ok := u.Fields[name]; ok {
			return strings.Join(vals, "|")
		}
	}
	return strings.Join(fieldPairs(u.Fields), "|")
}

// Sort returns a copy of records ordered by type, primary value and host.
// Records that compare equal keep their relative order.
func Sort(records []Record) []Record {
	type entry struct {
		typ, primary, host string
		rec                Record
	}
	entries := make([]entry, len(records))
	for i, r := range records {
		entries[i] = entry{string(r.Type()), PrimaryValue(r), r.Header().Host, r}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.typ != b.typ {
			return a.typ < b.typ
		}
		if a.primary != b.primary {
			return a.primary < b.primary
		}
		return a.host < b.host
	})
	out := make([]Record, len(entries))
	for i, e := range entries {
		out[i] = e.rec
	}
	return out
}

// ValidateUnique rejects record sets in which two records share a canonical key.
func ValidateUnique(records []Record) error {
	seen := make(map[string]int, len(records))
	for i, r := range records {
		key := CanonicalKey(r)
		if first, ok := seen[key]; ok {
			return fmt.Errorf("%w: records %d and %d share key %q", ErrDuplicateRecord, first, i, key)
		}
		seen[key] = i
	}
	return nil
}
