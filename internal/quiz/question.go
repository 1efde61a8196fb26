// Package quiz issues adaptive quizzes from an untrusted generator and
// grades submissions against them.
package quiz

import "github.com/abhisek/quizwise/internal/mastery"

// Question is one multiple-choice item. The JSON shape matches what the
// generator is instructed to emit.
type Question struct {
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// Session is an issued quiz. It is not stored server-side; the caller carries
// it back on submission.
type Session struct {
	Topic      string             `json:"topic"`
	Difficulty mastery.Difficulty `json:"difficulty"`
	Questions  []Question         `json:"questions"`
}

// AllCorrect returns the answer sheet that scores 100 on the session.
func (s *Session) AllCorrect() []*string {
	out := make([]*string, len(s.Questions))
	for i := range s.Questions {
		ans := s.Questions[i].CorrectAnswer
		out[i] = &ans
	}
	return out
}
