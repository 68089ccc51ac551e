package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/toddlingo/internal/config"
	"github.com/at-ishikawa/toddlingo/internal/content"
	"github.com/at-ishikawa/toddlingo/internal/language"
)

func TestPolicy_Set(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    Policy
		wantErr bool
	}{
		{
			name:  "always",
			value: "always",
			want:  PolicyAlways,
		},
		{
			name:  "threshold",
			value: "threshold",
			want:  PolicyThreshold,
		},
		{
			name:    "invalid policy value",
			value:   "sometimes",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var policy Policy
			err := policy.Set(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "invalid policy")
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, policy)
		})
	}
}

func TestPolicy_StringAndType(t *testing.T) {
	policy := PolicyThreshold
	assert.Equal(t, "threshold", policy.String())
	assert.Equal(t, "policy", policy.Type())
}

func TestLanguagesOptions_Query(t *testing.T) {
	tests := []struct {
		name    string
		options languagesOptions
		want    content.Query
		wantErr bool
	}{
		{
			name:    "whole collection",
			options: languagesOptions{collection: "words", value: "ignored"},
			want:    content.Query{Collection: content.CollectionWords},
		},
		{
			name:    "filtered",
			options: languagesOptions{collection: "book_pages", field: "book_id", value: "7", newest: true},
			want:    content.Query{Collection: content.CollectionBookPages, Field: "book_id", Value: "7", Newest: true},
		},
		{
			name:    "unknown collection",
			options: languagesOptions{collection: "users"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.options.query()
			if tt.wantErr {
				assert.ErrorIs(t, err, content.ErrUnknownCollection)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLanguagesOptions_NewReconciler(t *testing.T) {
	cfg := config.LanguagesConfig{
		Base:                  "ko",
		Secondary:             "en",
		Supported:             []string{"ko", "en", "fr"},
		ReadyPolicy:           "always",
		ReadyThresholdPercent: 10,
	}

	tests := []struct {
		name       string
		args       []string
		wantPolicy language.ReadyPolicy
		wantErr    bool
	}{
		{
			name:       "config policy",
			wantPolicy: language.AlwaysReady{},
		},
		{
			name:       "flag selects the threshold policy with the configured percent",
			args:       []string{"--policy", "threshold"},
			wantPolicy: language.Threshold{Percent: 10},
		},
		{
			name:       "flag overrides the percent",
			args:       []string{"--policy", "threshold", "--threshold", "35"},
			wantPolicy: language.Threshold{Percent: 35},
		},
		{
			name:    "percent out of range",
			args:    []string{"--policy", "threshold", "--threshold", "150"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newLanguagesCommand()
			require.NoError(t, cmd.ParseFlags(tt.args))

			policyFlag := cmd.Flags().Lookup("policy").Value.(*Policy)
			threshold, err := cmd.Flags().GetFloat64("threshold")
			require.NoError(t, err)

			options := languagesOptions{policy: *policyFlag, threshold: threshold}
			got, err := options.newReconciler(cfg, cmd.Flags())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPolicy, got.Policy())
		})
	}
}

func TestNewLanguagesCommand(t *testing.T) {
	cmd := newLanguagesCommand()

	assert.Equal(t, "languages", cmd.Use)
	for _, name := range []string{"collection", "field", "value", "newest", "policy", "threshold", "format"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "always", cmd.Flags().Lookup("policy").DefValue)
}
