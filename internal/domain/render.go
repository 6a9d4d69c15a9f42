package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// RenderRow formats a record and resolves its colour. RenderedAt comes from
// the package clock.
func RenderRow(f Formatter, colors ColorTable, rec EarthquakeRecord) RenderedRow {
	row := f.FormatRow(rec)
	return RenderedRow{
		ID:             rec.ID,
		DisplayRow:     row,
		MagnitudeColor: colors.Color(row.MagnitudeCategory),
		RenderedAt:     clock.Now().UTC(),
	}
}

// RenderRows renders records in order.
func RenderRows(f Formatter, colors ColorTable, records []EarthquakeRecord) []RenderedRow {
	rows := make([]RenderedRow, len(records))
	for i, rec := range records {
		rows[i] = RenderRow(f, colors, rec)
	}
	return rows
}

// SerializeRow marshals a rendered row into an output event keyed by record ID.
func SerializeRow(row RenderedRow) (OutputEvent, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize rendered row: %w", err)
	}
	return OutputEvent{
		Key:   []byte(row.ID),
		Value: data,
		Headers: map[string]string{
			"magnitude_category": row.MagnitudeCategory.String(),
			"rendered_at":        row.RenderedAt.Format(time.RFC3339),
		},
	}, nil
}
