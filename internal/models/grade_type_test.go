package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGradeTypeFromDisplayName(t *testing.T) {
	// Records written by older schema versions stored the display name.
	got := ParseGradeType("Examen Parcial", GradeTypeHomework)
	assert.Equal(t, GradeTypeMidtermExam, got)
}

func TestParseGradeTypeFromAbbreviation(t *testing.T) {
	assert.Equal(t, GradeTypeFinalExam, ParseGradeType("ef", GradeTypeHomework))
	assert.Equal(t, GradeTypePortfolio, ParseGradeType("PF", GradeTypeHomework))
}

func TestParseGradeTypeIdempotent(t *testing.T) {
	for _, gt := range GradeTypes() {
		assert.Equal(t, gt, ParseGradeType(string(gt), GradeTypeHomework))
		assert.Equal(t, gt, ParseGradeType(gt.DisplayName(), GradeTypeHomework))
		assert.Equal(t, gt, ParseGradeType(gt.Abbreviation(), GradeTypeHomework))
	}
}

func TestParseGradeTypeFallback(t *testing.T) {
	assert.Equal(t, GradeTypeHomework, ParseGradeType("unknown", GradeTypeHomework))

	_, ok := ResolveGradeType("unknown")
	require.False(t, ok)
}

func TestGradeTypePredicates(t *testing.T) {
	assert.True(t, GradeTypeMidtermExam.Exam())
	assert.True(t, GradeTypeFinalExam.Exam())
	assert.True(t, GradeTypeMakeupExam.Exam())
	assert.False(t, GradeTypeHomework.Exam())

	assert.True(t, GradeTypeHomework.ContinuousActivity())
	assert.True(t, GradeTypeParticipation.ContinuousActivity())
	assert.False(t, GradeTypeFinalExam.ContinuousActivity())

	assert.True(t, GradeTypeProject.MajorWork())
	assert.True(t, GradeTypePortfolio.MajorWork())
	assert.False(t, GradeTypeQuiz.MajorWork())
}

func TestGradeTypeMinimumPassingScore(t *testing.T) {
	assert.Equal(t, 70.0, GradeTypeProject.MinimumPassingScore())
	assert.Equal(t, 70.0, GradeTypePortfolio.MinimumPassingScore())
	assert.Equal(t, 60.0, GradeTypeFinalExam.MinimumPassingScore())
	assert.Equal(t, 60.0, GradeTypeHomework.MinimumPassingScore())
}

func TestGradeTypeMetadata(t *testing.T) {
	for _, gt := range GradeTypes() {
		assert.NotEmpty(t, gt.DisplayName())
		assert.NotEmpty(t, gt.Abbreviation())
		assert.Greater(t, gt.DefaultWeight(), 0.0)
	}
}
