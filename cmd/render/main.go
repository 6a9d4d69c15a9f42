// Command render previews earthquake list rows for a USGS GeoJSON file.
//
// Usage:
//
//	render rows data/mock/usgs_features_sample.json --lang ja --tz Asia/Tokyo
//	render rows feed.json --colors colors.yaml -o rows.json.zst
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"

	"github.com/couchcryptid/quake-report/internal/domain"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Rows    RowsCmd    `cmd:"" help:"Render a USGS GeoJSON FeatureCollection as list rows."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// RowsCmd defines the rows subcommand.
type RowsCmd struct {
	File string `arg:"" type:"existingfile" help:"USGS GeoJSON FeatureCollection."`

	Lang   string `short:"l" default:"en" help:"Display language (en, ja)."`
	TZ     string `name:"tz" default:"UTC" help:"IANA time zone for dates and times."`
	Colors string `short:"c" help:"YAML colour table overriding the stock palette."`

	JSON bool   `help:"Write JSON even when stdout is a terminal."`
	Out  string `short:"o" help:"Write rows as JSON to this file instead of stdout (.zst is zstd-compressed)."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("render"),
		kong.Description("Render earthquake list rows from USGS GeoJSON."),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// Run executes the rows command.
func (cmd *RowsCmd) Run() error {
	fd := os.Stdout.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	return cmd.run(os.Stdout, os.Stderr, tty)
}

func (cmd *RowsCmd) run(stdout, stderr io.Writer, tty bool) error {
	locale, ok := domain.LookupLocale(cmd.Lang)
	if !ok {
		return errors.New(l10n.F("Unsupported language: %s", cmd.Lang))
	}
	zone, err := time.LoadLocation(cmd.TZ)
	if err != nil {
		return errors.New(l10n.F("Unknown time zone: %s", cmd.TZ))
	}
	colors, err := domain.LoadColorTable(cmd.Colors)
	if err != nil {
		return errors.New(l10n.F("Failed to load colour table: %s", err))
	}

	data, err := os.ReadFile(cmd.File)
	if err != nil {
		return errors.New(l10n.F("Failed to read %s: %s", cmd.File, err))
	}
	records, err := domain.ParseFeatureCollection(data)
	if err != nil {
		return errors.New(l10n.F("Failed to parse %s: %s", cmd.File, err))
	}

	rows := domain.RenderRows(domain.NewFormatter(locale, zone), colors, records)

	switch {
	case cmd.Out != "":
		if err := writeRowsFile(cmd.Out, rows); err != nil {
			return errors.New(l10n.F("Failed to write %s: %s", cmd.Out, err))
		}
		fmt.Fprintln(stderr, l10n.F("Wrote %d rows to %s", len(rows), cmd.Out))
		return nil
	case tty && !cmd.JSON:
		return writeTable(stdout, rows)
	default:
		return writeRowsJSON(stdout, rows)
	}
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("render version %s", version))
	return nil
}
