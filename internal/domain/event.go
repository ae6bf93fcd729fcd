package domain

import (
	"context"
	"fmt"
	"time"
)

// EventKind selects which solar event a forecast targets.
type EventKind string

const (
	Sunrise EventKind = "sunrise"
	Sunset  EventKind = "sunset"
)

// ParseEventKind accepts "sunrise" or "sunset".
func ParseEventKind(s string) (EventKind, error) {
	switch EventKind(s) {
	case Sunrise, Sunset:
		return EventKind(s), nil
	default:
		return "", fmt.Errorf("unknown event kind %q", s)
	}
}

// DefaultHour is the local hour used when the solar event time cannot be fetched.
func (k EventKind) DefaultHour() int {
	if k == Sunset {
		return 18
	}
	return 6
}

// Label is the capitalized display name.
func (k EventKind) Label() string {
	if k == Sunset {
		return "Sunset"
	}
	return "Sunrise"
}

// RawMessage represents an unprocessed forecast request from the source topic.
type RawMessage struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputMessage is the serialized form destined for the sink topic.
type OutputMessage struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
