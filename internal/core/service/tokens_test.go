package service

import (
	"testing"

	"moodbot/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateUnknownFamily(t *testing.T) {
	e := NewTokenEstimator()

	_, err := e.Estimate("text", "gpt-9000")

	require.ErrorIs(t, err, domain.ErrUnsupportedModelFamily)
	assert.ErrorContains(t, err, "gpt-9000")
}

func TestFamilyEncodings(t *testing.T) {
	assert.Equal(t, "o200k_base", familyEncodings[FamilyGPT4o])
	assert.Equal(t, "cl100k_base", familyEncodings[FamilyGPT4])
	assert.Equal(t, "r50k_base", familyEncodings[FamilyGPT3])
}
