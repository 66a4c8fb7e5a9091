package zonefile

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"dnsmonitor/internal/domain/dnsrecord"

	"github.com/miekg/dns"
)

// ErrUnsupportedRecord is returned by ToRR for records that have no wire form.
var ErrUnsupportedRecord = errors.New("record cannot be converted to a resource record")

// trimDot drops the trailing root label from a domain name, except for the root itself.
func trimDot(name string) string {
	if name == "." {
		return name
	}
	return strings.TrimSuffix(name, ".")
}

// FromRR converts a resource record into a record. Names are lowercased and
// lose their trailing dot. Types without a dedicated variant become
// dnsrecord.Unknown with one field per rdata element, named rdata1..n.
func FromRR(rr dns.RR) dnsrecord.Record {
	h := rr.Header()
	hdr := dnsrecord.Header{Host: strings.ToLower(trimDot(h.Name)), TTL: h.Ttl}

	switch v := rr.(type) {
	case *dns.A:
		return dnsrecord.A{Hdr: hdr, IP: v.A.String()}
	case *dns.AAAA:
		return dnsrecord.AAAA{Hdr: hdr, IPv6: v.AAAA.String()}
	case *dns.CNAME:
		return dnsrecord.CNAME{Hdr: hdr, Target: trimDot(v.Target)}
	case *dns.NS:
		return dnsrecord.NS{Hdr: hdr, Target: trimDot(v.Ns)}
	case *dns.PTR:
		return dnsrecord.PTR{Hdr: hdr, Target: trimDot(v.Ptr)}
	case *dns.MX:
		return dnsrecord.MX{Hdr: hdr, Target: trimDot(v.Mx), Priority: v.Preference}
	case *dns.TXT:
		return dnsrecord.TXT{Hdr: hdr, Text: append([]string(nil), v.Txt...)}
	case *dns.SRV:
		return dnsrecord.SRV{Hdr: hdr, Target: trimDot(v.Target), Port: v.Port, Priority: v.Priority, Weight: v.Weight}
	case *dns.SOA:
		return dnsrecord.SOA{Hdr: hdr, PrimaryNameserver: trimDot(v.Ns), ResponsibleEmail: trimDot(v.Mbox)}
	case *dns.CAA:
		return dnsrecord.CAA{Hdr: hdr, Flags: v.Flag, Tag: v.Tag, Value: v.Value}
	}

	fields := make(map[string][]string)
	for i := 1; i <= dns.NumField(rr); i++ {
		fields["rdata"+strconv.Itoa(i)] = []string{dns.Field(rr, i)}
	}
	return dnsrecord.Unknown{Hdr: hdr, RRType: typeName(h.Rrtype), Fields: fields}
}

func typeName(t uint16) string {
	if name, ok := dns.TypeToString[t]; ok {
		return name
	}
	return "TYPE" + strconv.Itoa(int(t))
}

// ToRR converts a record into a resource record.
func ToRR(r dnsrecord.Record) (dns.RR, error) {
	h := r.Header()
	hdr := func(t uint16) dns.RR_Header {
		return dns.RR_Header{Name: dns.Fqdn(h.Host), Rrtype: t, Class: dns.ClassINET, Ttl: h.TTL}
	}

	switch v := r.(type) {
	case dnsrecord.A:
		ip := net.ParseIP(v.IP).To4()
		if ip == nil {
			return nil, fmt.Errorf("%w: invalid IPv4 address %q", ErrUnsupportedRecord, v.IP)
		}
		return &dns.A{Hdr: hdr(dns.TypeA), A: ip}, nil
	case dnsrecord.AAAA:
		ip := net.ParseIP(v.IPv6)
		if ip == nil {
			return nil, fmt.Errorf("%w: invalid IPv6 address %q", ErrUnsupportedRecord, v.IPv6)
		}
		return &dns.AAAA{Hdr: hdr(dns.TypeAAAA), AAAA: ip}, nil
	case dnsrecord.CNAME:
		return &dns.CNAME{Hdr: hdr(dns.TypeCNAME), Target: dns.Fqdn(v.Target)}, nil
	case dnsrecord.NS:
		return &dns.NS{Hdr: hdr(dns.TypeNS), Ns: dns.Fqdn(v.Target)}, nil
	case dnsrecord.PTR:
		return &dns.PTR{Hdr: hdr(dns.TypePTR), Ptr: dns.Fqdn(v.Target)}, nil
	case dnsrecord.MX:
		return &dns.MX{Hdr: hdr(dns.TypeMX), Preference: v.Priority, Mx: dns.Fqdn(v.Target)}, nil
	case dnsrecord.TXT:
		return &dns.TXT{Hdr: hdr(dns.TypeTXT), Txt: append([]string(nil), v.Text...)}, nil
	case dnsrecord.SRV:
		return &dns.SRV{Hdr: hdr(dns.TypeSRV), Priority: v.Priority, Weight: v.Weight, Port: v.Port, Target: dns.Fqdn(v.Target)}, nil
	case dnsrecord.SOA:
		return &dns.SOA{Hdr: hdr(dns.TypeSOA), Ns: dns.Fqdn(v.PrimaryNameserver), Mbox: dns.Fqdn(v.ResponsibleEmail)}, nil
	case dnsrecord.CAA:
		return &dns.CAA{Hdr: hdr(dns.TypeCAA), Flag: v.Flags, Tag: v.Tag, Value: v.Value}, nil
	case dnsrecord.Unknown:
		return unknownToRR(v)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedRecord, r)
}

// unknownToRR rebuilds a record captured by FromRR from its rdata fields.
func unknownToRR(u dnsrecord.Unknown) (dns.RR, error) {
	if _, ok := dns.StringToType[u.RRType]; !ok {
		return nil, fmt.Errorf("%w: unknown type %s", ErrUnsupportedRecord, u.RRType)
	}
	var rdata []string
	for i := 1; ; i++ {
		vals, ok := u.Fields["rdata"+strconv.Itoa(i)]
		if !ok {
			break
		}
		rdata = append(rdata, strings.Join(vals, " "))
	}
	if len(rdata) == 0 {
		return nil, fmt.Errorf("%w: %s record has no rdata fields", ErrUnsupportedRecord, u.RRType)
	}
	s := fmt.Sprintf("%s %d IN %s %s", dns.Fqdn(u.Hdr.Host), u.Hdr.TTL, u.RRType, strings.Join(rdata, " "))
	rr, err := dns.NewRR(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedRecord, err)
	}
	return rr, nil
}
