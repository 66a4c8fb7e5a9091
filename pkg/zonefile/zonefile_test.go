package zonefile

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"dnsmonitor/internal/domain/dnsrecord"

	"github.com/miekg/dns"
)

func hdr(host string) dnsrecord.Header { return dnsrecord.Header{Host: host, TTL: 3600} }

func TestToRRFromRR_RoundTrip(t *testing.T) {
	records := []dnsrecord.Record{
		dnsrecord.A{Hdr: hdr("example.com"), IP: "93.184.216.34"},
		dnsrecord.AAAA{Hdr: hdr("example.com"), IPv6: "2606:2800:220:1:248:1893:25c8:1946"},
		dnsrecord.CNAME{Hdr: hdr("www.example.com"), Target: "example.com"},
		dnsrecord.NS{Hdr: hdr("example.com"), Target: "a.iana-servers.net"},
		dnsrecord.PTR{Hdr: hdr("34.216.184.93.in-addr.arpa"), Target: "example.com"},
		dnsrecord.MX{Hdr: hdr("example.com"), Target: "mail.example.com", Priority: 10},
		dnsrecord.TXT{Hdr: hdr("example.com"), Text: []string{"v=spf1 -all", "hello world"}},
		dnsrecord.SRV{Hdr: hdr("_sip._tcp.example.com"), Target: "sip.example.com", Port: 5060, Priority: 10, Weight: 60},
		dnsrecord.SOA{Hdr: hdr("example.com"), PrimaryNameserver: "ns.icann.org", ResponsibleEmail: "noc.dns.icann.org"},
		dnsrecord.CAA{Hdr: hdr("example.com"), Flags: 0, Tag: "issue", Value: "letsencrypt.org"},
	}

	for _, r := range records {
		t.Run(string(r.Type()), func(t *testing.T) {
			rr, err := ToRR(r)
			if err != nil {
				t.Fatalf("ToRR failed: %v", err)
			}
			if rr.Header().Ttl != 3600 || rr.Header().Name != dns.Fqdn(r.Header().Host) {
				t.Errorf("Unexpected header: %+v", rr.Header())
			}
			got := FromRR(rr)
			if !reflect.DeepEqual(got, r) {
				t.Errorf("Expected %#v, got %#v", r, got)
			}
		})
	}
}

func TestFromRR_NormalizesNames(t *testing.T) {
	rr, err := dns.NewRR("WWW.Example.COM. 60 IN CNAME Target.Example.NET.")
	if err != nil {
		t.Fatalf("NewRR failed: %v", err)
	}
	got := FromRR(rr)
	want := dnsrecord.CNAME{Hdr: dnsrecord.Header{Host: "www.example.com", TTL: 60}, Target: "Target.Example.NET"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %#v, got %#v", want, got)
	}

	nullMX, _ := dns.NewRR("example.com. 60 IN MX 0 .")
	if mx := FromRR(nullMX).(dnsrecord.MX); mx.Target != "." {
		t.Errorf("Expected null MX target to stay '.', got %q", mx.Target)
	}
}

func TestFromRR_UnknownTypeKeepsRdata(t *testing.T) {
	rr, err := dns.NewRR(`example.com. 300 IN HINFO "x86" "linux"`)
	if err != nil {
		t.Fatalf("NewRR failed: %v", err)
	}

	got, ok := FromRR(rr).(dnsrecord.Unknown)
	if !ok {
		t.Fatalf("Expected Unknown, got %T", FromRR(rr))
	}
	if got.RRType != "HINFO" {
		t.Errorf("Expected HINFO, got %s", got.RRType)
	}
	if len(got.Fields) != 2 || got.Fields["rdata1"] == nil || got.Fields["rdata2"] == nil {
		t.Errorf("Expected rdata1 and rdata2, got %v", got.Fields)
	}

	back, err := ToRR(got)
	if err != nil {
		t.Fatalf("ToRR failed: %v", err)
	}
	if back.Header().Rrtype != dns.TypeHINFO {
		t.Errorf("Expected HINFO, got %s", dns.TypeToString[back.Header().Rrtype])
	}
}

func TestToRR_Errors(t *testing.T) {
	tests := []dnsrecord.Record{
		dnsrecord.A{Hdr: hdr("example.com"), IP: "not-an-ip"},
		dnsrecord.AAAA{Hdr: hdr("example.com"), IPv6: ""},
		dnsrecord.Unknown{Hdr: hdr("example.com"), RRType: "NOPE", Fields: map[string][]string{"rdata1": {"x"}}},
		dnsrecord.Unknown{Hdr: hdr("example.com"), RRType: "HINFO", Fields: map[string][]string{"cpu": {"x"}}},
	}
	for _, r := range tests {
		if _, err := ToRR(r); !errors.Is(err, ErrUnsupportedRecord) {
			t.Errorf("%#v: expected ErrUnsupportedRecord, got %v", r, err)
		}
	}
}

func TestGenerate(t *testing.T) {
	records := []dnsrecord.Record{
		dnsrecord.MX{Hdr: dnsrecord.Header{Host: "example.com"}, Target: "mail.example.com", Priority: 10},
		dnsrecord.A{Hdr: dnsrecord.Header{Host: "example.com"}, IP: "1.1.1.1"},
		dnsrecord.A{Hdr: dnsrecord.Header{Host: "bad.example.com"}, IP: "nope"},
	}

	out := Generate(Header{Origin: "example.com", SnapshotID: 7, CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}, records)

	for _, want := range []string{
		"$ORIGIN example.com.\n",
		"$TTL 300\n",
		"; snapshot 7 taken 2024-01-02T03:04:05Z\n",
		"example.com.\t300\tIN\tA\t1.1.1.1\n",
		"example.com.\t300\tIN\tMX\t10 mail.example.com.\n",
		"; skipped A bad.example.com",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Index(out, "IN\tA\t1.1.1.1") > strings.Index(out, "IN\tMX") {
		t.Errorf("Expected A before MX, got:\n%s", out)
	}
}

func TestParse(t *testing.T) {
	zone := `$ORIGIN example.com.
$TTL 600
@       IN A     1.1.1.1
www     IN CNAME @
@       IN MX    10 mail
@  3600 IN TXT   "v=spf1 -all"
`
	records, err := Parse(strings.NewReader(zone), "example.com")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("Expected 4 records, got %d", len(records))
	}

	want := []dnsrecord.Record{
		dnsrecord.A{Hdr: dnsrecord.Header{Host: "example.com", TTL: 600}, IP: "1.1.1.1"},
		dnsrecord.CNAME{Hdr: dnsrecord.Header{Host: "www.example.com", TTL: 600}, Target: "example.com"},
		dnsrecord.MX{Hdr: dnsrecord.Header{Host: "example.com", TTL: 600}, Target: "mail.example.com", Priority: 10},
		dnsrecord.TXT{Hdr: dnsrecord.Header{Host: "example.com", TTL: 3600}, Text: []string{"v=spf1 -all"}},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("Expected %#v, got %#v", want, records)
	}

	if _, err := Parse(strings.NewReader("@ IN A not-an-ip\n"), "example.com"); err == nil {
		t.Error("Expected an error for a malformed zone")
	}
}
