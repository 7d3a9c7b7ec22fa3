package db

type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{
		name: "create accounts table",
		sql: `
			CREATE TABLE IF NOT EXISTS accounts (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				nickname TEXT UNIQUE NOT NULL COLLATE NOCASE,
				password_hash TEXT NOT NULL,
				contact TEXT DEFAULT '',
				role TEXT NOT NULL DEFAULT 'user',
				can_write BOOLEAN DEFAULT 1,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)
		`,
	},
	{
		name: "create chat log table",
		sql: `
			CREATE TABLE IF NOT EXISTS chat_log (
				id INTEGER PRIMARY KEY,
				author_id INTEGER NOT NULL,
				author_nickname TEXT NOT NULL,
				author_role TEXT NOT NULL,
				body TEXT NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_chat_log_author ON chat_log(author_id)
		`,
	},
	{
		name: "create stream settings table",
		sql: `
			CREATE TABLE IF NOT EXISTS stream_settings (
				id INTEGER PRIMARY KEY CHECK (id = 1),
				title TEXT NOT NULL DEFAULT 'VELSGOT',
				video_url TEXT NOT NULL DEFAULT '',
				chat_enabled BOOLEAN NOT NULL DEFAULT 1
			);
			INSERT OR IGNORE INTO stream_settings (id) VALUES (1)
		`,
	},
}
