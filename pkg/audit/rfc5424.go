package audit

import (
	"fmt"
	"strings"
	"time"
)

// Facility is an RFC 5424 facility code.
type Facility int

// FacLocal0 is the default facility for audit messages.
const FacLocal0 Facility = 16

// sdID is the structured-data element id on every message.
const sdID = "classroom@32473"

// SDParam is one structured-data parameter.
type SDParam struct {
	Name  string
	Value string
}

// Message is an RFC 5424 syslog message with a single structured-data
// element.
type Message struct {
	Facility  Facility
	Severity  Severity
	Timestamp time.Time
	Hostname  string
	AppName   string
	ProcessID string
	MessageID string
	Params    []SDParam
	Text      string
}

const rfc5424Time = "2006-01-02T15:04:05.000Z"

// Format renders m in RFC 5424 wire format without a trailing newline.
// Empty header fields become the NILVALUE "-".
func (m Message) Format() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "<%d>1 ", int(m.Facility)*8+int(m.Severity))
	if m.Timestamp.IsZero() {
		b.WriteByte('-')
	} else {
		b.WriteString(m.Timestamp.UTC().Format(rfc5424Time))
	}
	for _, f := range []struct {
		v   string
		max int
	}{{m.Hostname, 255}, {m.AppName, 48}, {m.ProcessID, 128}, {m.MessageID, 32}} {
		b.WriteByte(' ')
		b.WriteString(headerField(f.v, f.max))
	}

	b.WriteByte(' ')
	if len(m.Params) == 0 {
		b.WriteByte('-')
	} else {
		b.WriteString("[" + sdID)
		for _, p := range m.Params {
			fmt.Fprintf(&b, " %s=\"%s\"", p.Name, escapeParam(p.Value))
		}
		b.WriteByte(']')
	}

	if m.Text != "" {
		b.WriteByte(' ')
		b.WriteString(m.Text)
	}
	return []byte(b.String())
}

// headerField returns "-" for an empty value and truncates to max bytes.
// Header fields must be printable US-ASCII; other bytes become '_'.
func headerField(v string, max int) string {
	if v == "" {
		return "-"
	}
	if len(v) > max {
		v = v[:max]
	}
	return strings.Map(func(r rune) rune {
		if r < 33 || r > 126 {
			return '_'
		}
		return r
	}, v)
}

var paramEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `]`, `\]`)

func escapeParam(v string) string {
	return paramEscaper.Replace(v)
}
