package audit

import (
	"fmt"
	"strings"
	"time"
)

// timeLayout pins timestamps to second precision in the persisted line form.
const timeLayout = "2006-01-02 15:04:05"

const fieldSeparator = "|"

// Event is one immutable record of a security-relevant action. It is written
// once and never updated or deleted by this system.
type Event struct {
	Timestamp  time.Time
	Actor      string
	Action     string
	SourceAddr string
}

// encode renders the event as its persisted line form:
// timestamp|actor|action|source_address.
func (e Event) encode() string {
	addr := e.SourceAddr
	if addr == "" {
		addr = "unknown"
	}
	return strings.Join([]string{
		e.Timestamp.Format(timeLayout),
		e.Actor,
		e.Action,
		addr,
	}, fieldSeparator)
}

// parseEvent reverses encode. The action field is free-form and may contain
// the separator, so timestamp and actor split from the left, the source
// address from the right, and the action keeps whatever sits between.
func parseEvent(line string) (Event, error) {
	parts := strings.SplitN(line, fieldSeparator, 3)
	if len(parts) != 3 {
		return Event{}, fmt.Errorf("audit: malformed record: %q", line)
	}
	ts, err := time.ParseInLocation(timeLayout, parts[0], time.Local)
	if err != nil {
		return Event{}, fmt.Errorf("audit: malformed timestamp: %w", err)
	}
	sep := strings.LastIndex(parts[2], fieldSeparator)
	if sep < 0 {
		return Event{}, fmt.Errorf("audit: malformed record: %q", line)
	}
	return Event{
		Timestamp:  ts,
		Actor:      parts[1],
		Action:     parts[2][:sep],
		SourceAddr: parts[2][sep+1:],
	}, nil
}
