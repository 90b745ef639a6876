package store

import "fmt"

// historyLimit caps the prompt history per polarity. Old entries are
// evicted oldest-first.
const historyLimit = 50

// Polarity values for prompt history.
const (
	PolarityPositive = "positive"
	PolarityNegative = "negative"
)

// AddPromptHistory records text at the front of the history for one
// polarity. Re-adding an existing prompt moves it to the front instead
// of duplicating it; the history is trimmed to the cap afterwards.
func (s *Store) AddPromptHistory(polarity, text string) error {
	if polarity != PolarityPositive && polarity != PolarityNegative {
		return fmt.Errorf("unknown prompt polarity %q", polarity)
	}
	if text == "" {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Delete-then-insert moves an existing entry to the front (highest id).
	if _, err := tx.Exec("DELETE FROM prompt_history WHERE polarity = ? AND text = ?", polarity, text); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO prompt_history (polarity, text) VALUES (?, ?)", polarity, text); err != nil {
		return err
	}
	// Trim beyond the cap, oldest first.
	_, err = tx.Exec(`
		DELETE FROM prompt_history
		WHERE polarity = ? AND id NOT IN (
			SELECT id FROM prompt_history WHERE polarity = ? ORDER BY id DESC LIMIT ?
		)
	`, polarity, polarity, historyLimit)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetPromptHistory returns the prompt history for one polarity, newest
// first.
func (s *Store) GetPromptHistory(polarity string) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT text FROM prompt_history WHERE polarity = ? ORDER BY id DESC", polarity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, err
		}
		history = append(history, text)
	}
	return history, rows.Err()
}

// ClearPromptHistory removes every entry for one polarity.
func (s *Store) ClearPromptHistory(polarity string) error {
	_, err := s.db.Exec("DELETE FROM prompt_history WHERE polarity = ?", polarity)
	return err
}
