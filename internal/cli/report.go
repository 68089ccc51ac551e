package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/toddlingo/internal/assetcache"
	"github.com/at-ishikawa/toddlingo/internal/language"
	"github.com/at-ishikawa/toddlingo/internal/repair"
)

type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
)

func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case FormatText, "":
		return FormatText, nil
	case FormatYAML:
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q, expected text or yaml", name)
}

// Printer renders command results for a terminal.
type Printer struct {
	w      io.Writer
	bold   *color.Color
	green  *color.Color
	yellow *color.Color
	red    *color.Color
	faint  *color.Color
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		w:      w,
		bold:   color.New(color.Bold),
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed),
		faint:  color.New(color.Faint),
	}
}

func (p *Printer) writeYAML(value any) error {
	encoder := yaml.NewEncoder(p.w)
	encoder.SetIndent(2)
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("encoder.Encode > %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("encoder.Close > %w", err)
	}
	return nil
}

// PrintAvailability lists every available language with its completeness.
func (p *Printer) PrintAvailability(availability language.Availability, format Format) error {
	if format == FormatYAML {
		return p.writeYAML(availability)
	}

	if _, err := p.bold.Fprintf(p.w, "Languages (%d records, policy %s)\n", availability.TotalRecords, availability.Policy); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	for _, code := range availability.Available {
		completeness := availability.Completeness[code]
		status := p.yellow.Sprint("not ready")
		if completeness.Ready {
			status = p.green.Sprint("ready")
		}
		if _, err := fmt.Fprintf(p.w, "  %-4s %-12s %6.1f%%  %s\n",
			code, language.DisplayName(code), completeness.Percent, status,
		); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
	}
	if availability.MissingRecords+availability.InvalidRecords+availability.LegacyRecords > 0 {
		if _, err := p.faint.Fprintf(p.w, "  missing: %d, invalid: %d, legacy encoded: %d\n",
			availability.MissingRecords, availability.InvalidRecords, availability.LegacyRecords,
		); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
	}
	return nil
}

// Progress returns a callback that redraws one status line and ends it on the last asset.
func (p *Printer) Progress(label string) assetcache.ProgressFunc {
	return func(done, total int) {
		_, _ = fmt.Fprintf(p.w, "\r%s %d/%d", label, done, total)
		if done == total {
			_, _ = fmt.Fprintln(p.w)
		}
	}
}

func (p *Printer) PrintPrefetch(result assetcache.PrefetchResult) error {
	if _, err := fmt.Fprintf(p.w, "%s, %s, %s\n",
		p.green.Sprintf("%d cached", result.Cached),
		p.faint.Sprintf("%d skipped", result.Skipped),
		p.red.Sprintf("%d failed", result.Failed),
	); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	return nil
}

func (p *Printer) PrintAudit(report repair.Report, format Format) error {
	if format == FormatYAML {
		return p.writeYAML(report)
	}

	if _, err := p.bold.Fprintf(p.w, "%s: %d records, %d missing\n", report.Collection, report.Total, report.Missing); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	for _, depth := range report.SortedDepths() {
		line := fmt.Sprintf("  depth %d: %d\n", depth, report.Depths[depth])
		if depth > 0 {
			line = p.yellow.Sprint(line)
		}
		if _, err := fmt.Fprint(p.w, line); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
	}
	if len(report.InvalidIDs) > 0 {
		if _, err := p.red.Fprintf(p.w, "  invalid: %v\n", report.InvalidIDs); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
	}

	switch {
	case report.Applied:
		if _, err := fmt.Fprintf(p.w, "rewrote %d, failed %d\n", len(report.Repaired), len(report.RepairFailed)); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
	case report.Legacy() > 0:
		if _, err := p.faint.Fprintf(p.w, "run with --apply to rewrite %d legacy payloads\n", report.Legacy()); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
	}
	return nil
}
