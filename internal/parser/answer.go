package parser

import (
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// DNSAnswer is one resolver answer line split into its parts.
type DNSAnswer struct {
	Name  string
	Type  string
	Value string
}

// MalformedRecordError is returned for answer lines that cannot be split
// into name, type and value.
type MalformedRecordError struct {
	Line   string
	Fields int
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record line %q: expected 3 fields, got %d", e.Line, e.Fields)
}

// ParseDNSAnswer parses a massdns "simple" output line such as
// "example.com. A 93.184.216.34". The trailing dot of the name is stripped;
// the value is kept as written.
func ParseDNSAnswer(line string) (DNSAnswer, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return DNSAnswer{}, &MalformedRecordError{Line: line, Fields: len(fields)}
	}

	name := strings.TrimSuffix(fields[0], ".")
	if name == "" {
		return DNSAnswer{}, &MalformedRecordError{Line: line, Fields: len(fields)}
	}

	return DNSAnswer{
		Name:  name,
		Type:  strings.ToUpper(fields[1]),
		Value: fields[2],
	}, nil
}

// IsAddress reports whether the answer carries an IP address (A or AAAA).
func (a DNSAnswer) IsAddress() bool {
	switch dns.StringToType[a.Type] {
	case dns.TypeA, dns.TypeAAAA:
		return true
	}
	return false
}

// Record renders the answer as the "TYPE VALUE" form stored in the catalog.
func (a DNSAnswer) Record() string {
	return a.Type + " " + a.Value
}
