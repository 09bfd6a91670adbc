package ai

import (
	"slices"
	"strings"
)

const (
	adviceHotFlashes = "For hot flashes, try wearing layered clothing that can be easily removed. " +
		"Keep a portable fan nearby and stay hydrated. Identify and avoid triggers like spicy foods, alcohol, and caffeine. " +
		"Deep breathing exercises when a hot flash begins may help reduce its intensity."
	adviceNightSweats = "To manage night sweats, use moisture-wicking bedding and sleepwear. " +
		"Keep your bedroom cool (around 65°F/18°C) and avoid triggers before bedtime. " +
		"Consider a cooling mattress pad or pillow. Keep water nearby to stay hydrated throughout the night."
	adviceSleep = "To improve sleep quality, maintain a consistent sleep schedule, even on weekends. " +
		"Create a restful environment by keeping your bedroom dark, quiet, and cool. " +
		"Avoid screens at least an hour before bedtime. Consider relaxation techniques like gentle stretching or reading before sleep."
	adviceMood = "For mood swings, practice mindfulness techniques such as meditation or deep breathing. " +
		"Regular exercise can help stabilize mood. Consider keeping a mood journal to identify triggers. " +
		"Ensure you're getting adequate sleep, as fatigue can worsen mood fluctuations."
	adviceFatigue = "To combat fatigue, prioritize activities based on your energy levels throughout the day. " +
		"Incorporate short rest periods into your schedule. Stay hydrated and maintain a balanced diet rich in iron and B vitamins. " +
		"Regular, moderate exercise can actually boost energy levels despite initial effort."
	adviceBreastTenderness = "For breast tenderness, wear a supportive bra, possibly even during sleep. " +
		"Apply cool compresses for comfort. Limit salt, caffeine, and alcohol intake. " +
		"Consider evening primrose oil supplements after consulting your healthcare provider."
)

var (
	topicGeneral = bullets(
		"Menopause is a natural transition marking the end of reproductive years",
		"Most women experience menopause between 45-55 years of age",
		"Symptoms can vary widely between individuals",
		"Consider consulting with a healthcare provider for personalized advice",
	)
	topicDiet = bullets(
		"Stay hydrated and maintain a balanced diet",
		"Foods rich in calcium and vitamin D support bone health",
		"Consider limiting caffeine, alcohol, and spicy foods which can trigger hot flashes",
		"Incorporate whole grains, fruits, vegetables, and lean proteins",
	)
	topicExercise = bullets(
		"Regular physical activity helps manage symptoms and improve mood",
		"Weight-bearing exercises support bone health",
		"Aim for at least 150 minutes of moderate exercise weekly",
		"Activities like walking, swimming, and yoga are particularly beneficial",
	)
	topicSleep = bullets(
		"Maintain a consistent sleep schedule",
		"Keep your bedroom cool, dark, and quiet",
		"Avoid screens at least an hour before bedtime",
		"Consider relaxation techniques like deep breathing or gentle stretching before sleep",
	)
)

// otherAdvice matches free-text symptoms to canned advice.
var otherAdvice = []struct {
	keyword string
	advice  string
}{
	{"breast", adviceBreastTenderness},
	{"hot flash", adviceHotFlashes},
	{"sweat", adviceNightSweats},
	{"insomnia", adviceSleep},
	{"mood", adviceMood},
	{"tired", adviceFatigue},
}

var topics = []struct {
	keywords []string
	text     string
}{
	{[]string{"diet", "food", "eat"}, topicDiet},
	{[]string{"exercise", "workout", "activity"}, topicExercise},
	{[]string{"sleep", "insomnia", "night"}, topicSleep},
}

// Fallback returns the canned title and content for a request. Symptom
// advice wins over prompt keywords; anything else gets general information.
func Fallback(req Request) (string, string) {
	prompt := strings.TrimSpace(req.Prompt)

	title := "General menopause information"
	switch {
	case prompt != "":
		title = "Response to: " + shorten(prompt, titleLength)
	case len(req.Symptoms) > 0:
		title = "Advice based on recent symptoms"
	}

	if len(req.Symptoms) > 0 {
		if advice := symptomAdvice(req.Symptoms); advice != "" {
			return title, advice
		}
		return title, topicGeneral
	}

	return title, topicFor(prompt)
}

// symptomAdvice lists each matching paragraph once, in log order.
func symptomAdvice(symptoms []Symptom) string {
	var parts []string
	add := func(advice string) {
		if !slices.Contains(parts, advice) {
			parts = append(parts, advice)
		}
	}

	for _, s := range symptoms {
		if s.HotFlashes {
			add(adviceHotFlashes)
		}
		if s.NightSweats {
			add(adviceNightSweats)
		}
		if s.SleepIssues {
			add(adviceSleep)
		}
		if s.MoodChanges {
			add(adviceMood)
		}
		if s.Fatigue {
			add(adviceFatigue)
		}
		other := strings.ToLower(s.Other)
		for _, o := range otherAdvice {
			if other != "" && strings.Contains(other, o.keyword) {
				add(o.advice)
			}
		}
	}

	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

func topicFor(prompt string) string {
	lower := strings.ToLower(prompt)
	if lower == "" {
		return topicGeneral
	}
	for _, topic := range topics {
		for _, keyword := range topic.keywords {
			if strings.Contains(lower, keyword) {
				return topic.text
			}
		}
	}
	return topicGeneral
}

func bullets(lines ...string) string {
	for i, line := range lines {
		lines[i] = "• " + line
	}
	return strings.Join(lines, "\n")
}
