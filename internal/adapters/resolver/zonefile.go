package resolver

import (
	"context"
	"fmt"
	"os"
	"strings"

	"dnsmonitor/internal/domain/dnsrecord"
	"dnsmonitor/pkg/zonefile"
)

// ZoneFile resolves a domain from a zone file on disk instead of the network.
// The file is read again on every call so edits are picked up by the next check.
type ZoneFile struct {
	path string
}

func NewZoneFile(path string) *ZoneFile {
	return &ZoneFile{path: path}
}

// Resolve returns the records of the file owned by domain. Records repeated in
// the file are returned once.
func (z *ZoneFile) Resolve(ctx context.Context, domain string) ([]dnsrecord.Record, error) {
	f, err := os.Open(z.path)
	if err != nil {
		return nil, fmt.Errorf("open zone file: %w", err)
	}
	defer f.Close()

	all, err := zonefile.Parse(f, domain)
	if err != nil {
		return nil, err
	}

	host := strings.ToLower(strings.TrimSuffix(domain, "."))
	seen := make(map[string]bool)
	var records []dnsrecord.Record
	for _, r := range all {
		if r.Header().Host != host {
			continue
		}
		key := dnsrecord.CanonicalKey(r)
		if seen[key] {
			continue
		}
		seen[key] = true
		records = append(records, r)
	}
	return records, nil
}
