// Package language derives which languages a content collection offers.
package language

import (
	"log/slog"
	"sort"

	"github.com/at-ishikawa/toddlingo/internal/content"
	"github.com/at-ishikawa/toddlingo/internal/translation"
)

// Completeness reports how many records carry a translation for a language.
type Completeness struct {
	Code    string  `json:"code" yaml:"code"`
	Records int     `json:"records" yaml:"records"`
	Percent float64 `json:"percent" yaml:"percent"`
	Ready   bool    `json:"ready" yaml:"ready"`
}

// Availability is derived on every read and never stored.
type Availability struct {
	Available      []string                `json:"available" yaml:"available"`
	Ready          []string                `json:"ready" yaml:"ready"`
	Completeness   map[string]Completeness `json:"completeness" yaml:"completeness"`
	Policy         string                  `json:"policy" yaml:"policy"`
	TotalRecords   int                     `json:"total_records" yaml:"total_records"`
	MissingRecords int                     `json:"missing_records" yaml:"missing_records"`
	InvalidRecords int                     `json:"invalid_records" yaml:"invalid_records"`
	LegacyRecords  int                     `json:"legacy_records" yaml:"legacy_records"`
}

type Reconciler struct {
	base      string
	secondary string
	allowed   map[string]bool
	policy    ReadyPolicy
	logger    *slog.Logger
}

type Option func(*Reconciler)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

func WithPolicy(policy ReadyPolicy) Option {
	return func(r *Reconciler) {
		r.policy = policy
	}
}

// NewReconciler creates a Reconciler. The base and secondary codes are always available
// and always ready; supported is the allow-list for every other code.
func NewReconciler(base, secondary string, supported []string, opts ...Option) *Reconciler {
	allowed := make(map[string]bool, len(supported)+2)
	for _, code := range supported {
		allowed[code] = true
	}
	allowed[base] = true
	allowed[secondary] = true

	r := &Reconciler{
		base:      base,
		secondary: secondary,
		allowed:   allowed,
		policy:    AlwaysReady{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reconciler) Policy() ReadyPolicy {
	return r.policy
}

// Reconcile computes the available and ready languages of a collection.
// A malformed payload only removes that record's contribution.
func (r *Reconciler) Reconcile(records []content.Record) Availability {
	result := Availability{
		Completeness: make(map[string]Completeness),
		Policy:       r.policy.String(),
		TotalRecords: len(records),
	}

	counts := map[string]int{
		r.base:      0,
		r.secondary: 0,
	}
	for _, record := range records {
		payload := translation.Decode(record.Translations)
		switch payload.Status {
		case translation.StatusMissing:
			result.MissingRecords++
			continue
		case translation.StatusInvalid:
			result.InvalidRecords++
			r.logger.Warn("skipping unparseable translations",
				"record_id", record.ID,
				"reason", payload.Reason)
			continue
		}

		if payload.Legacy() {
			result.LegacyRecords++
			r.logger.Debug("translations stored with extra encoding",
				"record_id", record.ID,
				"depth", payload.Depth)
		}
		for code := range r.allowed {
			if payload.Has(code) {
				counts[code]++
			}
		}
	}

	result.Available = r.sortCodes(counts)
	for _, code := range result.Available {
		percent := 0.0
		if result.TotalRecords > 0 {
			percent = float64(counts[code]) / float64(result.TotalRecords) * 100
		}
		ready := code == r.base || code == r.secondary || r.policy.Ready(percent)
		result.Completeness[code] = Completeness{
			Code:    code,
			Records: counts[code],
			Percent: percent,
			Ready:   ready,
		}
		if ready {
			result.Ready = append(result.Ready, code)
		}
	}
	return result
}

// sortCodes pins base and secondary first and orders the rest lexicographically.
func (r *Reconciler) sortCodes(counts map[string]int) []string {
	others := make([]string, 0, len(counts))
	for code := range counts {
		if code == r.base || code == r.secondary {
			continue
		}
		others = append(others, code)
	}
	sort.Strings(others)
	return append([]string{r.base, r.secondary}, others...)
}
