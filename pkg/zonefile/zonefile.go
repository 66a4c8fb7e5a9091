package zonefile

import (
	"fmt"
	"io"
	"strings"
	"time"

	"dnsmonitor/internal/domain/dnsrecord"

	"github.com/miekg/dns"
)

// DefaultTTL is written for records that carry no TTL, such as records read
// back from a snapshot.
const DefaultTTL = 300

// Header describes the snapshot a zone fragment is generated from.
type Header struct {
	Origin     string
	SnapshotID int64
	CreatedAt  time.Time
}

// Generate renders records as a BIND-style zone fragment. Records are written
// in canonical order. Records that have no wire form are kept as comments.
func Generate(h Header, records []dnsrecord.Record) string {
	var sb strings.Builder

	sb.WriteString("; dnsmonitor snapshot export\n")
	if h.SnapshotID != 0 {
		sb.WriteString(fmt.Sprintf("; snapshot %d taken %s\n", h.SnapshotID, h.CreatedAt.UTC().Format(time.RFC3339)))
	}
	if h.Origin != "" {
		sb.WriteString(fmt.Sprintf("$ORIGIN %s\n", dns.Fqdn(h.Origin)))
	}
	sb.WriteString(fmt.Sprintf("$TTL %d\n", DefaultTTL))
	sb.WriteString("\n")

	for _, r := range dnsrecord.Sort(records) {
		if r.Header().TTL == 0 {
			r = dnsrecord.WithTTL(r, DefaultTTL)
		}
		rr, err := ToRR(r)
		if err != nil {
			sb.WriteString(fmt.Sprintf("; skipped %s %s: %v\n", r.Type(), r.Header().Host, err))
			continue
		}
		sb.WriteString(rr.String())
		sb.WriteString("\n")
	}

	return sb.String()
}

// Parse reads the records of a zone file. Relative names are completed with
// origin.
func Parse(r io.Reader, origin string) ([]dnsrecord.Record, error) {
	zp := dns.NewZoneParser(r, dns.Fqdn(origin), "")
	var records []dnsrecord.Record
	for rr, ok := zp.Next(); ok; rr, ok = zp.Next() {
		records = append(records, FromRR(rr))
	}
	if err := zp.Err(); err != nil {
		return nil, fmt.Errorf("parse zone: %w", err)
	}
	return records, nil
}
