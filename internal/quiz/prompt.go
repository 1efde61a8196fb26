package quiz

import (
	"fmt"

	"github.com/abhisek/quizwise/internal/mastery"
)

const systemPrompt = `You are a quiz generator. Return ONLY a valid JSON array with no extra text.
Each item must have exactly this format:
{ "question": "What is 2+2?", "options": ["1", "2", "4", "8"], "correctAnswer": "4" }
The options must be the FULL answer text, NOT letters like A/B/C/D.
The correctAnswer must be the exact full text of the correct option.
Do not include markdown, backticks, or any explanation.`

func buildUserPrompt(topic string, difficulty mastery.Difficulty, count int) string {
	return fmt.Sprintf(`Generate %d %s-level multiple choice questions on the topic: %s.
Return ONLY the JSON array.`, count, difficulty, topic)
}
