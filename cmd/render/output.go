package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/ideamans/go-l10n"
	"github.com/klauspost/compress/zstd"

	"github.com/couchcryptid/quake-report/internal/domain"
)

// writeTable prints one line per row with the magnitude in its category colour.
func writeTable(w io.Writer, rows []domain.RenderedRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, l10n.T("No earthquakes found"))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		l10n.T("MAG"), l10n.T("OFFSET"), l10n.T("LOCATION"), l10n.T("DATE"), l10n.T("TIME"))
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			colorize(row.MagnitudeColor, row.MagnitudeText),
			row.OffsetLocation,
			strings.TrimSpace(row.PrimaryLocation),
			row.DateText,
			row.TimeText,
		)
	}
	return tw.Flush()
}

// colorize paints text in a "#RRGGBB" colour. Colour output is dropped when
// stdout is not a terminal or NO_COLOR is set.
func colorize(hex, text string) string {
	r, g, b, err := domain.ParseHexColor(hex)
	if err != nil {
		return text
	}
	return color.RGB(r, g, b).Add(color.Bold).Sprint(text)
}

func writeRowsJSON(w io.Writer, rows []domain.RenderedRow) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(rows)
}

// writeRowsFile writes rows as JSON to path, zstd-compressed when the path
// ends in ".zst".
func writeRowsFile(path string, rows []domain.RenderedRow) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if !strings.HasSuffix(path, ".zst") {
		return writeRowsJSON(f, rows)
	}

	enc, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	if err := writeRowsJSON(enc, rows); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}
