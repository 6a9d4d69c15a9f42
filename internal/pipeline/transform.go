package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/quake-report/internal/domain"
)

// RowTransformer implements Transformer by parsing a USGS feature and
// rendering it into a display row.
type RowTransformer struct {
	formatter domain.Formatter
	colors    domain.ColorTable
	logger    *slog.Logger
}

// NewTransformer creates a RowTransformer. A nil colour table uses the stock
// palette.
func NewTransformer(formatter domain.Formatter, colors domain.ColorTable, logger *slog.Logger) *RowTransformer {
	if colors == nil {
		colors = domain.DefaultColorTable()
	}
	return &RowTransformer{
		formatter: formatter,
		colors:    colors,
		logger:    logger,
	}
}

func (t *RowTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	rec, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	row := domain.RenderRow(t.formatter, t.colors, rec)
	t.logger.Debug("row rendered",
		"id", row.ID,
		"category", row.MagnitudeCategory.String(),
		"offset", row.OffsetLocation,
	)
	return domain.SerializeRow(row)
}
