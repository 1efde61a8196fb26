package mastery

// Tier thresholds. A score of exactly WeakThreshold is medium and a score
// of exactly HardThreshold is still medium.
const (
	WeakThreshold = 60
	HardThreshold = 80
)

// Score returns the cumulative mastery percentage for correct answers out
// of total questions, rounded half-up to an integer in [0, 100].
//
// The rounding is done in integer arithmetic so 12.5% rounds to 13 and
// 0.5% rounds to 1 on every platform. A zero total yields 0.
func Score(correct, total int) int {
	if total <= 0 {
		return 0
	}
	if correct < 0 {
		correct = 0
	}
	if correct > total {
		correct = total
	}
	return (200*correct + total) / (2 * total)
}

// TierFor maps a mastery score to the difficulty of the next quiz.
func TierFor(score int) Difficulty {
	switch {
	case score < WeakThreshold:
		return DifficultyEasy
	case score <= HardThreshold:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}

// IsWeak reports whether a score marks the topic for remediation.
func IsWeak(score int) bool {
	return score < WeakThreshold
}
