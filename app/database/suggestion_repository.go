package database

import (
	"fmt"
)

type SuggestionRepo struct {
	db *DB
}

var _ SuggestionRepository = (*SuggestionRepo)(nil)

func NewSuggestionRepository(db *DB) *SuggestionRepo {
	return &SuggestionRepo{db: db}
}

func (r *SuggestionRepo) InsertSuggestion(s Suggestion) error {
	_, err := r.db.Exec(`
		INSERT INTO suggestions (id, title, content, prompt, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.ID, s.Title, s.Content, s.Prompt, s.Source, s.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert suggestion: %w", err)
	}
	return nil
}

func (r *SuggestionRepo) GetRecentSuggestions(limit int) ([]Suggestion, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(`
		SELECT id, title, content, prompt, source, created_at
		FROM suggestions
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestions: %w", err)
	}
	defer rows.Close()

	var suggestions []Suggestion
	for rows.Next() {
		var s Suggestion
		if err := rows.Scan(&s.ID, &s.Title, &s.Content, &s.Prompt, &s.Source, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan suggestion row: %w", err)
		}
		suggestions = append(suggestions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating suggestion rows: %w", err)
	}

	return suggestions, nil
}
