package dns

import (
	"context"
	"strings"
	"time"

	"dnsmonitor/internal/domain/dnsrecord"
	"dnsmonitor/pkg/zonefile"

	"github.com/miekg/dns"
	"github.com/rs/zerolog/log"
)

// RecordSource supplies the records a server answers from.
type RecordSource interface {
	Records(ctx context.Context) ([]dnsrecord.Record, error)
}

// RecordSourceFunc adapts a function to RecordSource.
type RecordSourceFunc func(ctx context.Context) ([]dnsrecord.Record, error)

func (f RecordSourceFunc) Records(ctx context.Context) ([]dnsrecord.Record, error) { return f(ctx) }

// StaticRecords is a RecordSource serving a fixed record set.
type StaticRecords []dnsrecord.Record

func (s StaticRecords) Records(ctx context.Context) ([]dnsrecord.Record, error) { return s, nil }

// Server answers authoritatively for one zone from a record source. It is
// used to replay a stored snapshot over DNS.
type Server struct {
	source  RecordSource
	addr    string // listen address
	zone    string // authoritative zone
	timeout time.Duration
}

func NewServer(source RecordSource, addr, zone string) *Server {
	return &Server{source: source, addr: addr, zone: dns.Fqdn(strings.ToLower(zone)), timeout: 5 * time.Second}
}

// Start listens on UDP and blocks until the server fails.
func (s *Server) Start() error {
	mux := dns.NewServeMux()
	mux.Handle(s.zone, s)
	server := &dns.Server{Addr: s.addr, Net: "udp", Handler: mux}
	log.Info().Str("addr", s.addr).Str("zone", s.zone).Msg("starting DNS server")
	return server.ListenAndServe()
}

// ServeDNS implements dns.Handler.
func (s *Server) ServeDNS(w dns.ResponseWriter, r *dns.Msg) {
	m := new(dns.Msg)
	m.SetReply(r)
	m.Authoritative = true

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	records, err := s.source.Records(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load records")
		m.SetRcode(r, dns.RcodeServerFailure)
		_ = w.WriteMsg(m)
		return
	}

	for _, q := range r.Question {
		name := strings.ToLower(q.Name)
		if !dns.IsSubDomain(s.zone, name) {
			m.SetRcode(r, dns.RcodeRefused)
			continue
		}
		owned := ownedBy(records, name)
		if len(owned) == 0 {
			m.SetRcode(r, dns.RcodeNameError)
			continue
		}
		for _, rec := range match(owned, q.Qtype) {
			if rec.Header().TTL == 0 {
				rec = dnsrecord.WithTTL(rec, zonefile.DefaultTTL)
			}
			rr, err := zonefile.ToRR(rec)
			if err != nil {
				log.Warn().Err(err).Str("name", name).Msg("skipping record without wire form")
				continue
			}
			rr.Header().Name = q.Name
			m.Answer = append(m.Answer, rr)
		}
	}
	_ = w.WriteMsg(m)
}

// ownedBy returns the records whose host is the fully qualified name.
func ownedBy(records []dnsrecord.Record, fqdn string) []dnsrecord.Record {
	var out []dnsrecord.Record
	for _, r := range records {
		if dns.Fqdn(strings.ToLower(r.Header().Host)) == fqdn {
			out = append(out, r)
		}
	}
	return out
}

// match selects the records answering qtype. A name holding a CNAME answers
// every type with it.
func match(owned []dnsrecord.Record, qtype uint16) []dnsrecord.Record {
	var out, cname []dnsrecord.Record
	for _, r := range owned {
		t, ok := dns.StringToType[string(r.Type())]
		if !ok {
			continue
		}
		if qtype == dns.TypeANY || t == qtype {
			out = append(out, r)
		}
		if t == dns.TypeCNAME {
			cname = append(cname, r)
		}
	}
	if len(out) == 0 {
		return cname
	}
	return out
}
