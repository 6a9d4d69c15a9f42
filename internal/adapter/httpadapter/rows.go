package httpadapter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/quake-report/internal/domain"
	"github.com/couchcryptid/quake-report/internal/observability"
)

// maxRowsBody caps the FeatureCollection accepted by POST /v1/rows.
const maxRowsBody = 1 << 20

type rowsResponse struct {
	Rows []domain.RenderedRow `json:"rows"`
}

// rowsHandler renders a posted USGS FeatureCollection into display rows.
// Query parameters "lang" and "tz" override the default locale and zone.
type rowsHandler struct {
	formatter domain.Formatter
	colors    domain.ColorTable
	metrics   *observability.Metrics
	logger    *slog.Logger
}

func (h *rowsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	formatter, err := h.formatterFor(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRowsBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "read request body")
		return
	}

	records, err := domain.ParseFeatureCollection(body)
	if err != nil {
		h.logger.Warn("rows request rejected", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows := domain.RenderRows(formatter, h.colors, records)
	for _, row := range rows {
		h.metrics.RowsRendered.WithLabelValues(row.MagnitudeCategory.String(), "http").Inc()
	}
	writeJSON(w, http.StatusOK, rowsResponse{Rows: rows})
}

func (h *rowsHandler) formatterFor(r *http.Request) (domain.Formatter, error) {
	locale := h.formatter.Locale()
	zone := h.formatter.Zone()

	q := r.URL.Query()
	if lang := q.Get("lang"); lang != "" {
		l, ok := domain.LookupLocale(lang)
		if !ok {
			return domain.Formatter{}, fmt.Errorf("unsupported lang %q", lang)
		}
		locale = l
	}
	if tz := q.Get("tz"); tz != "" {
		z, err := time.LoadLocation(tz)
		if err != nil {
			return domain.Formatter{}, fmt.Errorf("unknown tz %q", tz)
		}
		zone = z
	}
	return domain.NewFormatter(locale, zone), nil
}
