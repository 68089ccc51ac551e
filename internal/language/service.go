package language

import (
	"context"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/at-ishikawa/toddlingo/internal/content"
)

// Service reads a collection from the content store and reconciles it.
type Service struct {
	repo       content.Repository
	reconciler *Reconciler
}

func NewService(repo content.Repository, reconciler *Reconciler) *Service {
	return &Service{
		repo:       repo,
		reconciler: reconciler,
	}
}

// Availability loads the records matching query and derives their languages.
func (s *Service) Availability(ctx context.Context, query content.Query) (Availability, error) {
	records, err := s.repo.FindRecords(ctx, query)
	if err != nil {
		return Availability{}, fmt.Errorf("repo.FindRecords > %w", err)
	}
	return s.reconciler.Reconcile(records), nil
}

var englishNames = display.English.Languages()

// DisplayName returns the English name of a language code, or the code itself when unknown.
func DisplayName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := englishNames.Name(tag); name != "" {
		return name
	}
	return code
}
