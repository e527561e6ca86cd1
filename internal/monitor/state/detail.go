package state

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/mcptrace/mcptrace/pkg/ipc"
)

// directionPrefixes are the ASCII line-direction markers stripped before
// best-effort JSON pretty-printing in the detail overlay. The bridge's own
// "→ " and "← " message prefixes are not in this list and are left in place.
var directionPrefixes = []string{"<-", "->", "<<", ">>", "IN:", "OUT:", "REQ:", "RESP:"}

// DetailContent formats the body of the open detail overlay: if the
// entry carries structured metadata it is pretty-printed ahead of the
// message; otherwise the message has its direction marker and leading
// control bytes stripped and is pretty-printed as JSON on a best-effort
// basis, falling back to the trimmed original text if it does not parse.
func DetailContent(entry ipc.LogEntry) string {
	var b strings.Builder

	if len(entry.Metadata) > 0 {
		if pretty, ok := prettyJSON(entry.Metadata); ok {
			b.WriteString(pretty)
			b.WriteString("\n\n")
		}
	}

	b.WriteString(formatMessage(entry.Message))
	return b.String()
}

func formatMessage(message string) string {
	trimmed := stripDirectionPrefix(message)
	trimmed = stripLeadingControlBytes(trimmed)

	if pretty, ok := prettyJSON([]byte(trimmed)); ok {
		return pretty
	}
	return trimmed
}

func stripDirectionPrefix(s string) string {
	for _, prefix := range directionPrefixes {
		if strings.HasPrefix(s, prefix) {
			return strings.TrimLeft(s[len(prefix):], " ")
		}
	}
	return s
}

// stripLeadingControlBytes drops leading control characters other than
// newline, carriage return, and tab, which formatMessage preserves.
func stripLeadingControlBytes(s string) string {
	i := 0
	for i < len(s) {
		c := s[i]
		if c >= 0x20 || c == '\n' || c == '\r' || c == '\t' {
			break
		}
		i++
	}
	return s[i:]
}

func prettyJSON(raw []byte) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", false
	}
	var v interface{}
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return "", false
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", false
	}
	return strings.TrimRight(buf.String(), "\n"), true
}
