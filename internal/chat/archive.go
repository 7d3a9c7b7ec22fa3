package chat

import (
	"database/sql"
	"fmt"

	"github.com/velsgot/velsgot/internal/role"
)

// Archive persists the chat log so a restart rebuilds the live room. The
// room assigns ids; the archive stores them verbatim, including the
// author snapshot so old messages keep the role badge they were sent
// with.
type Archive struct {
	db *sql.DB
}

// NewArchive creates a new chat archive over an open database.
func NewArchive(db *sql.DB) *Archive {
	return &Archive{db: db}
}

// Append records a posted message.
func (a *Archive) Append(m Message) error {
	_, err := a.db.Exec(`
		INSERT INTO chat_log (id, author_id, author_nickname, author_role, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.ID, m.Author.ID, m.Author.Nickname, string(m.Author.Role), m.Text, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("archive message %d: %w", m.ID, err)
	}
	return nil
}

// Delete mirrors a single-message deletion.
func (a *Archive) Delete(messageID int64) error {
	_, err := a.db.Exec("DELETE FROM chat_log WHERE id = ?", messageID)
	if err != nil {
		return fmt.Errorf("unarchive message %d: %w", messageID, err)
	}
	return nil
}

// Clear mirrors a full chat clear.
func (a *Archive) Clear() error {
	_, err := a.db.Exec("DELETE FROM chat_log")
	if err != nil {
		return fmt.Errorf("clear archive: %w", err)
	}
	return nil
}

// Load returns the archived log in posting order.
func (a *Archive) Load() ([]Message, error) {
	rows, err := a.db.Query(`
		SELECT id, author_id, author_nickname, author_role, body, created_at
		FROM chat_log ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("load archive: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		var roleStr string
		if err := rows.Scan(&m.ID, &m.Author.ID, &m.Author.Nickname, &roleStr, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		if m.Author.Role, err = role.Parse(roleStr); err != nil {
			return nil, fmt.Errorf("archived message %d: %w", m.ID, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// Tail returns up to limit of the most recent archived messages, oldest
// first, for history display.
func (a *Archive) Tail(limit int) ([]Message, error) {
	rows, err := a.db.Query(`
		SELECT id, author_id, author_nickname, author_role, body, created_at
		FROM (
			SELECT * FROM chat_log ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("tail archive: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		var roleStr string
		if err := rows.Scan(&m.ID, &m.Author.ID, &m.Author.Nickname, &roleStr, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		if m.Author.Role, err = role.Parse(roleStr); err != nil {
			return nil, fmt.Errorf("archived message %d: %w", m.ID, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
