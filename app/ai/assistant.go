package ai

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	SourceAI       = "ai"
	SourceFallback = "fallback"

	DefaultTimeout  = 10 * time.Second
	DefaultMaxBytes = 4096

	titleLength = 50
)

var ErrEmptyCompletion = errors.New("empty completion")

// Completer sends one prompt to a text completion endpoint.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Symptom struct {
	Date        time.Time `json:"date"`
	HotFlashes  bool      `json:"hotFlashes"`
	NightSweats bool      `json:"nightSweats"`
	SleepIssues bool      `json:"sleepIssues"`
	MoodChanges bool      `json:"moodChanges"`
	Fatigue     bool      `json:"fatigue"`
	Other       string    `json:"otherSymptoms"`
	Severity    int       `json:"severity"`
	Notes       string    `json:"description"`
}

type Request struct {
	Prompt   string
	Symptoms []Symptom
}

type Suggestion struct {
	ID        string
	Title     string
	Content   string
	Prompt    string
	Source    string
	CreatedAt time.Time
}

// Assistant answers wellness questions through a Completer and falls back
// to canned advice on any failure. Suggest never returns an error.
type Assistant struct {
	completer Completer
	timeout   time.Duration
	maxBytes  int
	now       func() time.Time
}

// NewAssistant accepts a nil completer, in which case every suggestion is
// canned.
func NewAssistant(completer Completer, timeout time.Duration, maxBytes int) *Assistant {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Assistant{
		completer: completer,
		timeout:   timeout,
		maxBytes:  maxBytes,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (a *Assistant) Suggest(ctx context.Context, req Request) Suggestion {
	req.Prompt = strings.TrimSpace(req.Prompt)
	start := a.now()

	if a.completer != nil {
		content, err := a.complete(ctx, BuildPrompt(req))
		if err == nil {
			slog.Debug("Suggestion generated", "source", SourceAI, "duration", a.now().Sub(start))
			return a.newSuggestion(titleFromContent(content, req.Prompt), content, req.Prompt, SourceAI)
		}
		slog.Warn("Completion failed, using canned suggestion", "error", err, "duration", a.now().Sub(start))
	}

	title, content := Fallback(req)
	return a.newSuggestion(title, content, req.Prompt, SourceFallback)
}

// complete enforces the time budget even if the completer ignores ctx.
func (a *Assistant) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	type reply struct {
		text string
		err  error
	}
	done := make(chan reply, 1)

	go func() {
		text, err := a.completer.Complete(ctx, prompt)
		done <- reply{text, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil {
			return "", r.err
		}
		text := truncateBytes(CleanMarkdown(r.text), a.maxBytes)
		if text == "" {
			return "", ErrEmptyCompletion
		}
		return text, nil
	}
}

func (a *Assistant) newSuggestion(title, content, prompt, source string) Suggestion {
	return Suggestion{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		Prompt:    prompt,
		Source:    source,
		CreatedAt: a.now(),
	}
}

func titleFromContent(content, prompt string) string {
	firstLine, _, _ := strings.Cut(content, "\n")
	firstLine = strings.TrimSpace(firstLine)
	if firstLine != "" {
		return shorten(firstLine, titleLength)
	}
	if prompt != "" {
		return "Response to: " + shorten(prompt, titleLength)
	}
	return "Menopause information"
}

// shorten cuts s to at most n runes, ending with "..." when cut.
func shorten(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n-3])) + "..."
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.TrimSpace(s[:cut])
}
