package domain

import (
	"context"
	"time"
)

// EarthquakeRecord is a single earthquake as supplied by the upstream feed.
type EarthquakeRecord struct {
	ID           string  `json:"id,omitempty"`
	Magnitude    float64 `json:"magnitude"`
	Location     string  `json:"location"`
	TimeInMillis int64   `json:"time"`
}

// DisplayRow holds the strings a list row shows for one record.
type DisplayRow struct {
	MagnitudeText     string            `json:"magnitude_text"`
	MagnitudeCategory MagnitudeCategory `json:"magnitude_category"`
	PrimaryLocation   string            `json:"primary_location"`
	OffsetLocation    string            `json:"offset_location"`
	DateText          string            `json:"date_text"`
	TimeText          string            `json:"time_text"`
}

// RenderedRow is a DisplayRow with its colour resolved, ready for a client.
type RenderedRow struct {
	ID string `json:"id"`
	DisplayRow
	MagnitudeColor string    `json:"magnitude_color"`
	RenderedAt     time.Time `json:"rendered_at"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
