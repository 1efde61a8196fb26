package mastery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_ZeroTotal(t *testing.T) {
	assert.Equal(t, 0, Score(0, 0))
	assert.Equal(t, 0, Score(3, 0))
}

func TestScore_Values(t *testing.T) {
	tests := []struct {
		name           string
		correct, total int
		want           int
	}{
		{"all wrong", 0, 5, 0},
		{"three of five", 3, 5, 60},
		{"all right", 5, 5, 100},
		{"eight of ten", 8, 10, 80},
		{"one third rounds down", 1, 3, 33},
		{"two thirds rounds up", 2, 3, 67},
		{"half rounds up at 12.5", 1, 8, 13},
		{"half rounds up at 37.5", 3, 8, 38},
		{"half rounds up at 0.5", 1, 200, 1},
		{"just under half stays", 1, 201, 0},
		{"negative correct clamps", -2, 5, 0},
		{"correct above total clamps", 7, 5, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.correct, tt.total))
		})
	}
}

func TestScore_MonotonicInCorrect(t *testing.T) {
	for total := 1; total <= 40; total++ {
		prev := Score(0, total)
		for correct := 1; correct <= total; correct++ {
			got := Score(correct, total)
			if got < prev {
				t.Fatalf("Score(%d,%d)=%d < Score(%d,%d)=%d", correct, total, got, correct-1, total, prev)
			}
			if got < 0 || got > 100 {
				t.Fatalf("Score(%d,%d)=%d out of range", correct, total, got)
			}
			prev = got
		}
	}
}

func TestTierFor_Boundaries(t *testing.T) {
	tests := []struct {
		score int
		want  Difficulty
	}{
		{0, DifficultyEasy},
		{59, DifficultyEasy},
		{60, DifficultyMedium},
		{61, DifficultyMedium},
		{79, DifficultyMedium},
		{80, DifficultyMedium},
		{81, DifficultyHard},
		{100, DifficultyHard},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.score), "score %d", tt.score)
	}
}

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty("medium")
	assert.NoError(t, err)
	assert.Equal(t, DifficultyMedium, d)

	_, err = ParseDifficulty("Medium")
	assert.Error(t, err)
}
