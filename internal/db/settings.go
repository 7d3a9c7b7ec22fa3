package db

import (
	"fmt"
)

// StreamSettings holds the stream identity and the persisted chat flag.
// The video URL is owned by the presentation layer; the core only
// supplies the CanChangeVideo check that gates updating it.
type StreamSettings struct {
	Title       string
	VideoURL    string
	ChatEnabled bool
}

// GetStreamSettings retrieves the stream settings row.
func (db *DB) GetStreamSettings() (*StreamSettings, error) {
	var s StreamSettings
	err := db.QueryRow("SELECT title, video_url, chat_enabled FROM stream_settings WHERE id = 1").Scan(
		&s.Title,
		&s.VideoURL,
		&s.ChatEnabled,
	)
	if err != nil {
		return nil, fmt.Errorf("load stream settings: %w", err)
	}
	return &s, nil
}

// UpdateStreamSettings updates the stream settings row.
func (db *DB) UpdateStreamSettings(s *StreamSettings) error {
	_, err := db.Exec(
		"UPDATE stream_settings SET title = ?, video_url = ?, chat_enabled = ? WHERE id = 1",
		s.Title,
		s.VideoURL,
		s.ChatEnabled,
	)
	if err != nil {
		return fmt.Errorf("update stream settings: %w", err)
	}
	return nil
}
