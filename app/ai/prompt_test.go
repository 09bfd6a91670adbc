package ai

import (
	"strings"
	"testing"
	"time"
)

func TestBuildPrompt(t *testing.T) {
	req := Request{
		Prompt: "How do I sleep better?",
		Symptoms: []Symptom{
			{
				Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
				HotFlashes:  true,
				SleepIssues: true,
				Other:       "joint pain",
				Severity:    7,
				Notes:       "worse after coffee",
			},
			{
				Date:     time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
				Fatigue:  true,
				Severity: 4,
			},
		},
	}

	prompt := BuildPrompt(req)

	if !strings.HasPrefix(prompt, instructions) {
		t.Error("Expected prompt to start with instructions")
	}

	wants := []string{
		"\n\nRecent symptoms reported by the user:",
		"\n- Symptoms on 2024-03-05: Hot Flashes, Sleep Issues, joint pain (Severity: 7/10). Notes: worse after coffee",
		"\n- Symptoms on 2024-03-06: Fatigue (Severity: 4/10)\n",
		"\n\nUser query: How do I sleep better?",
	}
	for _, want := range wants {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q, got: %q", want, prompt)
		}
	}
}

func TestBuildPromptDefaults(t *testing.T) {
	prompt := BuildPrompt(Request{})

	if strings.Contains(prompt, "Recent symptoms") {
		t.Error("Expected no symptom section without symptoms")
	}
	if !strings.HasSuffix(prompt, "User query: "+defaultQuery) {
		t.Errorf("Expected default query, got: %q", prompt)
	}
}
