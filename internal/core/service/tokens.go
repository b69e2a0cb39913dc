package service

import (
	"fmt"
	"sync"

	"moodbot/internal/core/domain"

	"github.com/pkoukk/tiktoken-go"
)

// ModelFamily selects the tokenizer rules used for estimation. Different
// families segment text differently, so there is no silent fallback for an
// unknown family.
type ModelFamily string

const (
	FamilyGPT4o ModelFamily = "gpt-4o"
	FamilyGPT4  ModelFamily = "gpt-4"
	FamilyGPT3  ModelFamily = "gpt-3"
)

var familyEncodings = map[ModelFamily]string{
	FamilyGPT4o: "o200k_base",
	FamilyGPT4:  "cl100k_base",
	FamilyGPT3:  "r50k_base",
}

// TokenEstimator estimates text size in model tokens. Safe for concurrent
// use; encoders are built once per family and cached.
type TokenEstimator struct {
	encoders sync.Map
}

func NewTokenEstimator() *TokenEstimator {
	return &TokenEstimator{}
}

// Estimate returns the token count of text under the given family's
// tokenizer. Deterministic for a given (text, family) pair.
func (e *TokenEstimator) Estimate(text string, family ModelFamily) (int, error) {
	encodingName, ok := familyEncodings[family]
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnsupportedModelFamily, family)
	}

	if enc, ok := e.encoders.Load(family); ok {
		return len(enc.(*tiktoken.Tiktoken).Encode(text, nil, nil)), nil
	}

	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return 0, fmt.Errorf("loading encoding %q: %w", encodingName, err)
	}
	e.encoders.Store(family, enc)

	return len(enc.Encode(text, nil, nil)), nil
}
