package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"moodbot/internal/core/domain"
	"moodbot/internal/core/port"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// linkPattern is the naive "possible URL" heuristic: a letter immediately
// followed by a period immediately followed by a letter, no whitespace in
// between. Matches things like "fizz.buzz"; digits are exempt, so "3.14"
// passes.
var linkPattern = regexp.MustCompile(`[a-zA-Zа-яА-Я]\.[a-zA-Zа-яА-Я]`)

const censorMask = "***"

// Estimator abstracts token counting for the quota check.
type Estimator interface {
	Estimate(text string, family ModelFamily) (int, error)
}

type FilterParams struct {
	Estimator Estimator
	// Moderator is the optional remote moderation collaborator. When nil the
	// remote check is skipped.
	Moderator      port.Moderator
	TokenFamily    ModelFamily
	MaxTokens      int
	BanWords       []string
	OutputBanWords []string
	CensorWords    []string
}

// Filter performs pre- and post-generation text screening.
type Filter struct {
	estimator      Estimator
	moderator      port.Moderator
	tokenFamily    ModelFamily
	maxTokens      int
	banWords       []string
	outputBanWords []string
	censorWords    []string
	l              *zerolog.Logger
}

func NewFilter(p FilterParams) *Filter {
	logger := log.With().Str("service", "filter").Logger()

	banWords := make([]string, len(p.BanWords))
	for i, w := range p.BanWords {
		banWords[i] = strings.ToLower(w)
	}
	outputBanWords := make([]string, len(p.OutputBanWords))
	for i, w := range p.OutputBanWords {
		outputBanWords[i] = strings.ToLower(w)
	}

	return &Filter{
		estimator:      p.Estimator,
		moderator:      p.Moderator,
		tokenFamily:    p.TokenFamily,
		maxTokens:      p.MaxTokens,
		banWords:       banWords,
		outputBanWords: outputBanWords,
		censorWords:    p.CensorWords,
		l:              &logger,
	}
}

// ScreenOutgoing screens user-supplied text before it reaches the model.
// Checks run in order and short-circuit on the first failure: token quota,
// banned phrases, then the remote moderation call. A failing moderation
// call rejects the text; this is a deliberate fail-closed policy.
func (f *Filter) ScreenOutgoing(ctx context.Context, text string) error {
	count, err := f.estimator.Estimate(text, f.tokenFamily)
	if err != nil {
		return err
	}
	if count > f.maxTokens {
		return &domain.QuotaExceededError{Count: count, Limit: f.maxTokens}
	}

	lowered := strings.ToLower(text)
	for _, word := range f.banWords {
		if strings.Contains(lowered, word) {
			return domain.ErrBannedPhrase
		}
	}

	if f.moderator == nil {
		return nil
	}

	result, err := f.moderator.Moderate(ctx, text)
	if err != nil {
		f.l.Warn().Err(err).Msg("remote moderation call failed, rejecting")
		return fmt.Errorf("%w: %w", domain.ErrModerationUnavailable, err)
	}
	if result.Flagged {
		return &domain.ContentRejectedError{Reason: strings.Join(result.Categories, ", ")}
	}

	return nil
}

// ScreenIncoming screens a model response. A blacklisted phrase or a
// link-like pattern rejects the entire response rather than redacting it.
// Otherwise every censored word is masked and the sanitized text returned.
func (f *Filter) ScreenIncoming(text string) (string, error) {
	lowered := strings.ToLower(text)
	for _, word := range f.outputBanWords {
		if strings.Contains(lowered, word) {
			return "", &domain.ContentRejectedError{Reason: "blacklisted phrase in response"}
		}
	}

	if linkPattern.MatchString(text) {
		return "", &domain.ContentRejectedError{Reason: "possible link in response"}
	}

	for _, censor := range f.censorWords {
		text = strings.ReplaceAll(text, censor, censorMask)
	}

	return text, nil
}

// Finalize is the single point through which every model response passes
// before reaching a user.
func (f *Filter) Finalize(raw string) (string, error) {
	sanitized, err := f.ScreenIncoming(raw)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(sanitized), nil
}
