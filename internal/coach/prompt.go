package coach

import (
	"fmt"
	"regexp"
	"strings"
)

const tutorSystemPrompt = `You are a friendly, expert tutor for college students.
Explain concepts clearly, step-by-step. Use simple language and examples.
Avoid jargon unless necessary. If it's a math/code problem, show full working.`

const studyPlanSystemPrompt = `You are a personalized academic coach.
Create a detailed 7-day study plan. Format it day by day.
Be specific with topics, time allocations, and resources.`

const explainSystemPrompt = `You are a professor. Give a clear, structured explanation of any topic.
Include: definition, key concepts, real-world examples, and a quick summary.`

const defaultGoal = "general improvement"

var injectionPattern = regexp.MustCompile(`(?i)ignore previous|system prompt|jailbreak`)

// Sanitize replaces known prompt-injection phrases with "[removed]".
func Sanitize(s string) string {
	return injectionPattern.ReplaceAllString(s, "[removed]")
}

func buildPlanPrompt(weakTopics []string, goal string) string {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		goal = defaultGoal
	}
	return fmt.Sprintf("Student goal: %s\nWeak topics: %s\nCreate a structured 7-day recovery study plan.",
		goal, strings.Join(weakTopics, ", "))
}
