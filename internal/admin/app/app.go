// Package app wires the moderator console against the durable store.
// The console is the operator's trusted path: it runs as the creator
// identity, so every action it offers is creator-permitted by the
// matrix. It edits the same database the server restores from.
package app

import (
	"fmt"
	"os"
	"time"

	"github.com/velsgot/velsgot/internal/chat"
	"github.com/velsgot/velsgot/internal/config"
	"github.com/velsgot/velsgot/internal/db"
	"github.com/velsgot/velsgot/internal/role"
	"github.com/velsgot/velsgot/internal/user"
)

type App struct {
	ConfigPath string
	Config     *config.Config
	DBPath     string
	DB         *db.DB

	Accounts *user.Repo
	Archive  *chat.Archive

	// Operator is the role the console acts as. Always creator: the
	// console is only reachable by whoever runs the stream host.
	Operator role.Role

	BusyTimeout time.Duration
}

func New(configPath string) (*App, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(cfg.Paths.Data, 0755); err != nil {
		return nil, nil, fmt.Errorf("create data directory: %w", err)
	}

	database, err := db.Open(cfg.Paths.Database)
	if err != nil {
		return nil, nil, err
	}

	a := &App{
		ConfigPath:  configPath,
		Config:      cfg,
		DBPath:      cfg.Paths.Database,
		DB:          database,
		Accounts:    user.NewRepo(database.DB),
		Archive:     chat.NewArchive(database.DB),
		Operator:    role.Creator,
		BusyTimeout: 5 * time.Second,
	}

	// Best-effort online use: reduce SQLITE_BUSY failures while the
	// chat server holds the database.
	_, _ = database.Exec("PRAGMA busy_timeout = 5000")

	cleanup := func() {
		_ = database.Close()
	}

	return a, cleanup, nil
}
