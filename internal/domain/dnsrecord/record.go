package dnsrecord

// Type is the DNS record type tag as stored in the record_type column.
type Type string

// Supported record types. Anything else is carried by Unknown.
const (
	TypeA     Type = "A"
	TypeAAAA  Type = "AAAA"
	TypeCNAME Type = "CNAME"
	TypeNS    Type = "NS"
	TypePTR   Type = "PTR"
	TypeMX    Type = "MX"
	TypeTXT   Type = "TXT"
	TypeSRV   Type = "SRV"
	TypeSOA   Type = "SOA"
	TypeCAA   Type = "CAA"
)

// Header holds the fields shared by every record variant.
// TTL is volatile: it never takes part in identity, equality or encoding.
type Header struct {
	Host string `json:"host"`
	TTL  uint32 `json:"ttl"`
}

// Record is a DNS record of one of the supported variants.
// The set of implementations is closed; use a type switch to dispatch.
type Record interface {
	Type() Type
	Header() Header
	withHeader(h Header) Record
}

// A is an IPv4 address record.
type A struct {
	Hdr Header
	IP  string
}

// AAAA is an IPv6 address record.
type AAAA struct {
	Hdr  Header
	IPv6 string
}

// CNAME is a canonical name record.
type CNAME struct {
	Hdr    Header
	Target string
}

// NS is a name server record.
type NS struct {
	Hdr    Header
	Target string
}

// PTR is a pointer record.
type PTR struct {
	Hdr    Header
	Target string
}

// MX is a mail exchanger record.
type MX struct {
	Hdr      Header
	Target   string
	Priority uint16
}

// TXT is a text record. Text is ordered as received but compared as a set.
type TXT struct {
	Hdr  Header
	Text []string
}

// SRV is a service locator record.
type SRV struct {
	Hdr      Header
	Target   string
	Port     uint16
	Priority uint16
	Weight   uint16
}

// SOA is a start of authority record, reduced to the fields worth monitoring.
type SOA struct {
	Hdr               Header
	PrimaryNameserver string
	ResponsibleEmail  string
}

// CAA is a certification authority authorization record.
type CAA struct {
	Hdr   Header
	Flags uint8
	Tag   string
	Value string
}

// Unknown carries any record type without a dedicated variant.
// Fields never contains the keys type, host or ttl.
type Unknown struct {
	Hdr    Header
	RRType string
	Fields map[string][]string
}

func (A) Type() Type         { return TypeA }
func (AAAA) Type() Type      { return TypeAAAA }
func (CNAME) Type() Type     { return TypeCNAME }
func (NS) Type() Type        { return TypeNS }
func (PTR) Type() Type       { return TypePTR }
func (MX) Type() Type        { return TypeMX }
func (TXT) Type() Type       { return TypeTXT }
func (SRV) Type() Type       { return TypeSRV }
func (SOA) Type() Type       { return TypeSOA }
func (CAA) Type() Type       { return TypeCAA }
func (r Unknown) Type() Type { return Type(r.RRType) }

func (r A) Header() Header       { return r.Hdr }
func (r AAAA) Header() Header    { return r.Hdr }
func (r CNAME) Header() Header   { return r.Hdr }
func (r NS) Header() Header      { return r.Hdr }
func (r PTR) Header() Header     { return r.Hdr }
func (r MX) Header() Header      { return r.Hdr }
func (r TXT) Header() Header     { return r.Hdr }
func (r SRV) Header() Header     { return r.Hdr }
func (r SOA) Header() Header     { return r.Hdr }
func (r CAA) Header() Header     { return r.Hdr }
func (r Unknown) Header() Header { return r.Hdr }

func (r A) withHeader(h Header) Record       { r.Hdr = h; return r }
func (r AAAA) withHeader(h Header) Record    { r.Hdr = h; return r }
func (r CNAME) withHeader(h Header) Record   { r.Hdr = h; return r }
func (r NS) withHeader(h Header) Record      { r.Hdr = h; return r }
func (r PTR) withHeader(h Header) Record     { r.Hdr = h; return r }
func (r MX) withHeader(h Header) Record      { r.Hdr = h; return r }
func (r TXT) withHeader(h Header) Record     { r.Hdr = h; return r }
func (r SRV) withHeader(h Header) Record     { r.Hdr = h; return r }
func (r SOA) withHeader(h Header) Record     { r.Hdr = h; return r }
func (r CAA) withHeader(h Header) Record     { r.Hdr = h; return r }
func (r Unknown) withHeader(h Header) Record { r.Hdr = h; return r }

// WithTTL returns a copy of r carrying the given TTL.
func WithTTL(r Record, ttl uint32) Record {
	h := r.Header()
	h.TTL = ttl
	return r.withHeader(h)
}

// Host returns the owner name of r.
func Host(r Record) string { return r.Header().Host }

// Fields returns a flat view of r keyed by the JSON field names used by the API
// and notifications.
func Fields(r Record) map[string]any {
	h := r.Header()
	out := map[string]any{
		"type": string(r.Type()),
		"host": h.Host,
		"ttl":  h.TTL,
	}
	switch v := r.(type) {
	case A:
		out["ip"] = v.IP
	case AAAA:
		out["ipv6"] = v.IPv6
	case CNAME:
		out["target"] = v.Target
	case NS:
		out["target"] = v.Target
	case PTR:
		out["target"] = v.Target
	case MX:
		out["target"] = v.Target
		out["priority"] = v.Priority
	case TXT:
		out["text"] = append([]string(nil), v.Text...)
	case SRV:
		out["target"] = v.Target
		out["port"] = v.Port
		out["priority"] = v.Priority
		out["weight"] = v.Weight
	case SOA:
		out["primary_nameserver"] = v.PrimaryNameserver
		out["responsible_email"] = v.ResponsibleEmail
	case CAA:
		out["flags"] = v.Flags
		out["tag"] = v.Tag
		out["value"] = v.Value
	case Unknown:
		for k, vals := range v.Fields {
			if reservedField(k) {
				continue
			}
			if len(vals) == 1 {
				out[k] = vals[0]
			} else {
				out[k] = append([]string(nil), vals...)
			}
		}
	}
	return out
}

func reservedField(name string) bool {
	return name == "type" || name == "host" || name == "ttl"
}
