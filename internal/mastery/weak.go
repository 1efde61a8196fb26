package mastery

import "github.com/samber/lo"

// WeakTopics returns the topics whose mastery score is below WeakThreshold,
// in the order the records were given.
func WeakTopics(records []Record) []string {
	weak := lo.Filter(records, func(r Record, _ int) bool {
		return IsWeak(r.MasteryScore)
	})
	return lo.Map(weak, func(r Record, _ int) string {
		return r.Topic
	})
}
