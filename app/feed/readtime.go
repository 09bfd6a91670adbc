package feed

import (
	"strings"
)

const (
	DefaultMinReadTime = 2
	wordsPerMinute     = 175
)

// ReadTime estimates reading minutes from the word count of the plain text.
// Short pieces are padded since readers linger on them relatively longer.
func ReadTime(content string, minMinutes int) int {
	if minMinutes <= 0 {
		minMinutes = DefaultMinReadTime
	}

	words := float64(len(strings.Fields(PlainText(content))))

	var effective float64
	switch {
	case words < 100:
		effective = words + 300
	case words < 300:
		effective = words * 2
	default:
		effective = words * 1.5
	}

	return max(int(effective/wordsPerMinute), minMinutes)
}
