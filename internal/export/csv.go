// Package export encodes a user's notes as the downloadable CSV artifact.
//
// The format quotes every field unconditionally and escapes only by
// doubling embedded double-quotes, which encoding/csv (conditional
// quoting) cannot emit, so rows are written by hand.
package export

import (
	"bytes"
	"strings"

	"github.com/dailyecho/dailyecho/internal/store"
)

// Filename is the attachment name the artifact is delivered under.
const Filename = "your_events.csv"

const header = "Event,Date\n"

// Encode renders events (caller supplies them oldest first) into the CSV
// artifact: header `Event,Date`, then one `"<text>","<ISO-8601>"` row per
// note. Timestamps are RFC 3339 with millisecond precision, UTC.
func Encode(events []store.Event) []byte {
	var buf bytes.Buffer
	buf.WriteString(header)
	for _, ev := range events {
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(ev.Text, `"`, `""`))
		buf.WriteString(`","`)
		buf.WriteString(ev.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
		buf.WriteString("\"\n")
	}
	return buf.Bytes()
}
