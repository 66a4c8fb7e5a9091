package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"dnsmonitor/internal/domain/dnsrecord"
	"dnsmonitor/pkg/zonefile"

	"github.com/miekg/dns"
	"github.com/rs/zerolog/log"
)

// DefaultNameserver is used when no nameserver is configured and
// /etc/resolv.conf cannot be read.
const DefaultNameserver = "1.1.1.1:53"

// DefaultQueryTypes are the types queried when none are configured.
var DefaultQueryTypes = []string{"A", "AAAA", "CNAME", "MX", "NS", "TXT", "SOA", "CAA"}

// ErrUnknownQueryType is returned for query type names miekg/dns does not know.
var ErrUnknownQueryType = errors.New("unknown query type")

// Config holds resolver settings
type Config struct {
	Nameserver string
	QueryTypes []string
	Timeout    time.Duration
}

// Resolver queries one nameserver for every configured type of a domain
type Resolver struct {
	client     *dns.Client
	nameserver string
	qtypes     []uint16
}

// New creates a resolver. An empty nameserver is taken from /etc/resolv.conf.
func New(cfg Config) (*Resolver, error) {
	names := cfg.QueryTypes
	if len(names) == 0 {
		names = DefaultQueryTypes
	}
	qtypes := make([]uint16, 0, len(names))
	for _, name := range names {
		t, ok := dns.StringToType[strings.ToUpper(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, name)
		}
		qtypes = append(qtypes, t)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	nameserver := cfg.Nameserver
	if nameserver == "" {
		nameserver = systemNameserver()
	}
	if _, _, err := net.SplitHostPort(nameserver); err != nil {
		nameserver = net.JoinHostPort(nameserver, "53")
	}

	return &Resolver{
		client:     &dns.Client{Net: "udp", Timeout: timeout},
		nameserver: nameserver,
		qtypes:     qtypes,
	}, nil
}

func systemNameserver() string {
	conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(conf.Servers) == 0 {
		return DefaultNameserver
	}
	return net.JoinHostPort(conf.Servers[0], conf.Port)
}

// Nameserver returns the address queries are sent to.
func (r *Resolver) Nameserver() string {
	return r.nameserver
}

// Resolve queries every configured type of domain and returns the answer
// records that belong to it. Records repeated across answers are returned once.
func (r *Resolver) Resolve(ctx context.Context, domain string) ([]dnsrecord.Record, error) {
	fqdn := dns.Fqdn(domain)
	seen := make(map[string]bool)
	var records []dnsrecord.Record

	for _, qtype := range r.qtypes {
		answer, err := r.query(ctx, fqdn, qtype)
		if err != nil {
			return nil, err
		}
		for _, rr := range answer {
			// CNAME chains bring in records owned by other names.
			if !strings.EqualFold(rr.Header().Name, fqdn) {
				continue
			}
			rec := zonefile.FromRR(rr)
			key := dnsrecord.CanonicalKey(rec)
			if seen[key] {
				continue
			}
			seen[key] = true
			records = append(records, rec)
		}
	}

	log.Debug().Str("domain", domain).Str("nameserver", r.nameserver).Int("records", len(records)).Msg("domain resolved")
	return records, nil
}

func (r *Resolver) query(ctx context.Context, fqdn string, qtype uint16) ([]dns.RR, error) {
	m := new(dns.Msg)
	m.SetQuestion(fqdn, qtype)
	m.RecursionDesired = true

	in, _, err := r.client.ExchangeContext(ctx, m, r.nameserver)
	if err != nil {
		return nil, fmt.Errorf("query %s %s: %w", dns.TypeToString[qtype], fqdn, err)
	}
	if in.Truncated {
		tcp := &dns.Client{Net: "tcp", Timeout: r.client.Timeout}
		if in, _, err = tcp.ExchangeContext(ctx, m, r.nameserver); err != nil {
			return nil, fmt.Errorf("query %s %s over tcp: %w", dns.TypeToString[qtype], fqdn, err)
		}
	}

	switch in.Rcode {
	case dns.RcodeSuccess:
		return in.Answer, nil
	case dns.RcodeNameError:
		// NXDOMAIN for one type is an empty answer; the caller decides what no records means.
		return nil, nil
	default:
		return nil, fmt.Errorf("query %s %s: %s", dns.TypeToString[qtype], fqdn, dns.RcodeToString[in.Rcode])
	}
}
