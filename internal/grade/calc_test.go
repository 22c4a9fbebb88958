package grade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentportal/internal/shared"
)

func fptr(v float64) *float64 { return &v }

func TestLetterFor(t *testing.T) {
	tests := []struct {
		percentage float64
		want       string
	}{
		{100, "A+"},
		{97, "A+"}, // boundary, inclusive
		{96.99, "A"},
		{93, "A"},
		{90, "A-"},
		{87, "B+"},
		{83, "B"},
		{80, "B-"},
		{77, "C+"},
		{73, "C"},
		{70, "C-"}, // boundary, inclusive
		{69.99, "D"},
		{60, "D"},
		{59, "F"},
		{0, "F"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LetterFor(tt.percentage), "percentage %v", tt.percentage)
	}
}

func TestCompute(t *testing.T) {
	t.Run("derives percentage and letter", func(t *testing.T) {
		pct, letter, err := Compute(fptr(97), fptr(100))
		require.NoError(t, err)
		require.NotNil(t, pct)
		assert.Equal(t, 97.0, *pct)
		assert.Equal(t, "A+", letter)
	})

	t.Run("failing marks", func(t *testing.T) {
		pct, letter, err := Compute(fptr(59), fptr(100))
		require.NoError(t, err)
		require.NotNil(t, pct)
		assert.Equal(t, 59.0, *pct)
		assert.Equal(t, "F", letter)
	})

	t.Run("percentage stays within 0..100 for earned <= possible", func(t *testing.T) {
		cases := [][2]float64{{0, 50}, {25, 50}, {50, 50}, {7, 13}, {99.5, 100}}
		for _, c := range cases {
			pct, _, err := Compute(fptr(c[0]), fptr(c[1]))
			require.NoError(t, err)
			require.NotNil(t, pct)
			assert.GreaterOrEqual(t, *pct, 0.0)
			assert.LessOrEqual(t, *pct, 100.0)
		}
	})

	t.Run("missing inputs leave derived fields unset", func(t *testing.T) {
		pct, letter, err := Compute(nil, fptr(100))
		require.NoError(t, err)
		assert.Nil(t, pct)
		assert.Empty(t, letter)

		pct, letter, err = Compute(fptr(50), nil)
		require.NoError(t, err)
		assert.Nil(t, pct)
		assert.Empty(t, letter)
	})

	t.Run("zero possible marks is rejected", func(t *testing.T) {
		pct, letter, err := Compute(fptr(1), fptr(0))
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
		assert.Nil(t, pct)
		assert.Empty(t, letter)
	})

	t.Run("negative marks are rejected", func(t *testing.T) {
		_, _, err := Compute(fptr(-1), fptr(100))
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("never assigns incomplete", func(t *testing.T) {
		for p := 0.0; p <= 100; p += 0.5 {
			assert.NotEqual(t, shared.GradeI, LetterFor(p))
		}
	})
}

func TestRecompute(t *testing.T) {
	t.Run("updates derived fields on the record", func(t *testing.T) {
		rec := &shared.GradeRecord{MarksEarned: fptr(83), MarksPossible: fptr(100)}
		require.NoError(t, Recompute(rec))
		require.NotNil(t, rec.Percentage)
		assert.Equal(t, 83.0, *rec.Percentage)
		assert.Equal(t, "B", rec.LetterGrade)
	})

	t.Run("reruns on mark mutation", func(t *testing.T) {
		rec := &shared.GradeRecord{MarksEarned: fptr(70), MarksPossible: fptr(100)}
		require.NoError(t, Recompute(rec))
		assert.Equal(t, "C-", rec.LetterGrade)

		rec.MarksEarned = fptr(92)
		require.NoError(t, Recompute(rec))
		assert.Equal(t, "A-", rec.LetterGrade)
	})

	t.Run("leaves fields unset when marks absent", func(t *testing.T) {
		rec := &shared.GradeRecord{}
		require.NoError(t, Recompute(rec))
		assert.Nil(t, rec.Percentage)
		assert.Empty(t, rec.LetterGrade)
	})
}
