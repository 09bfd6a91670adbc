package ai

import (
	"fmt"
	"strings"
)

const instructions = "You are a helpful health assistant providing evidence-based information about menopause. " +
	"Provide concise, practical suggestions. Focus on lifestyle adjustments, self-care strategies, " +
	"and general information. Do not diagnose conditions or prescribe medications. " +
	"Keep responses under 500 characters when possible. DO NOT use markdown formatting, asterisks, or any special formatting. " +
	"Use simple text formatting with clear line breaks between paragraphs and bullet points starting with • character. " +
	"Preserve all line breaks in your response exactly as intended for display."

const defaultQuery = "Please provide general advice based on my recent symptoms."

// BuildPrompt combines the fixed instructions, the recent symptom log and the
// user query.
func BuildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString(instructions)

	if len(req.Symptoms) > 0 {
		b.WriteString("\n\nRecent symptoms reported by the user:")
		for _, s := range req.Symptoms {
			fmt.Fprintf(&b, "\n- Symptoms on %s: %s (Severity: %d/10)",
				s.Date.Format("2006-01-02"), strings.Join(s.names(), ", "), s.Severity)
			if notes := strings.TrimSpace(s.Notes); notes != "" {
				b.WriteString(". Notes: ")
				b.WriteString(notes)
			}
		}
	}

	b.WriteString("\n\nUser query: ")
	if req.Prompt != "" {
		b.WriteString(req.Prompt)
	} else {
		b.WriteString(defaultQuery)
	}

	return b.String()
}

func (s Symptom) names() []string {
	var names []string
	if s.HotFlashes {
		names = append(names, "Hot Flashes")
	}
	if s.NightSweats {
		names = append(names, "Night Sweats")
	}
	if s.SleepIssues {
		names = append(names, "Sleep Issues")
	}
	if s.MoodChanges {
		names = append(names, "Mood Changes")
	}
	if s.Fatigue {
		names = append(names, "Fatigue")
	}
	if other := strings.TrimSpace(s.Other); other != "" {
		names = append(names, other)
	}
	return names
}
