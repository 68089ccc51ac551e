// Package repair finds translations stored with extra textual encoding and rewrites them.
package repair

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/at-ishikawa/toddlingo/internal/content"
	"github.com/at-ishikawa/toddlingo/internal/translation"
)

// Report summarizes one pass over a collection.
type Report struct {
	Collection   content.Collection `json:"collection" yaml:"collection"`
	Total        int                `json:"total" yaml:"total"`
	Missing      int                `json:"missing" yaml:"missing"`
	Depths       map[int]int        `json:"depths" yaml:"depths"`
	InvalidIDs   []int64            `json:"invalid_ids" yaml:"invalid_ids"`
	Applied      bool               `json:"applied" yaml:"applied"`
	Repaired     []int64            `json:"repaired" yaml:"repaired"`
	RepairFailed []int64            `json:"repair_failed" yaml:"repair_failed"`
}

// Legacy is the number of valid payloads that needed more than one parse.
func (r Report) Legacy() int {
	count := 0
	for depth, n := range r.Depths {
		if depth > 0 {
			count += n
		}
	}
	return count
}

// SortedDepths returns the depths present in the report in ascending order.
func (r Report) SortedDepths() []int {
	depths := make([]int, 0, len(r.Depths))
	for depth := range r.Depths {
		depths = append(depths, depth)
	}
	sort.Ints(depths)
	return depths
}

type Auditor struct {
	repo   content.Repository
	logger *slog.Logger
}

func NewAuditor(repo content.Repository, logger *slog.Logger) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{repo: repo, logger: logger}
}

// Audit decodes every payload of collection. With apply, legacy payloads are rewritten
// as plain objects; a failed rewrite is recorded and the pass continues.
func (a *Auditor) Audit(ctx context.Context, collection content.Collection, apply bool) (Report, error) {
	records, err := a.repo.FindRecords(ctx, content.Query{Collection: collection})
	if err != nil {
		return Report{}, fmt.Errorf("repo.FindRecords > %w", err)
	}

	report := Report{
		Collection: collection,
		Total:      len(records),
		Depths:     make(map[int]int),
		Applied:    apply,
	}
	for _, record := range records {
		payload := translation.Decode(record.Translations)
		switch payload.Status {
		case translation.StatusMissing:
			report.Missing++
			continue
		case translation.StatusInvalid:
			a.logger.Warn("unparseable translations", "collection", collection, "record_id", record.ID, "reason", payload.Reason)
			report.InvalidIDs = append(report.InvalidIDs, record.ID)
			continue
		}

		report.Depths[payload.Depth]++
		if !apply || !payload.Legacy() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := a.repo.UpdateTranslations(ctx, collection, record.ID, payload.Mapping); err != nil {
			a.logger.Warn("failed to rewrite translations", "collection", collection, "record_id", record.ID, "error", err)
			report.RepairFailed = append(report.RepairFailed, record.ID)
			continue
		}
		a.logger.Debug("rewrote translations", "collection", collection, "record_id", record.ID, "depth", payload.Depth)
		report.Repaired = append(report.Repaired, record.ID)
	}
	return report, nil
}
