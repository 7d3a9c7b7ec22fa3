package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/velsgot/velsgot/internal/chat"
	"github.com/velsgot/velsgot/internal/config"
	"github.com/velsgot/velsgot/internal/db"
	"github.com/velsgot/velsgot/internal/moderation"
	"github.com/velsgot/velsgot/internal/server"
	"github.com/velsgot/velsgot/internal/user"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := os.MkdirAll(cfg.Paths.Data, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	database, err := db.Open(cfg.Paths.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()
	log.Printf("Database opened: %s", cfg.Paths.Database)

	accounts := user.NewRepo(database.DB)
	archive := chat.NewArchive(database.DB)

	// First run seeds the single creator account from config.
	if cfg.Stream.CreatorPassword == "" {
		log.Fatalf("stream.creator_password must be set")
	}
	creator, err := accounts.SeedCreator(cfg.Stream.CreatorNickname, cfg.Stream.CreatorPassword)
	if err != nil {
		log.Fatalf("Failed to seed creator account: %v", err)
	}

	settings, err := database.GetStreamSettings()
	if err != nil {
		log.Fatalf("Failed to load stream settings: %v", err)
	}
	log.Printf("Starting %s (creator: %s)", settings.Title, creator.Nickname)

	// Rebuild the live state from the durable record.
	directory := user.NewDirectory()
	known, err := accounts.List()
	if err != nil {
		log.Fatalf("Failed to list accounts: %v", err)
	}
	directory.Restore(known)

	room := chat.NewRoom()
	msgs, err := archive.Load()
	if err != nil {
		log.Fatalf("Failed to load chat archive: %v", err)
	}
	room.Restore(settings.ChatEnabled, msgs)
	log.Printf("Restored %d accounts, %d messages (chat enabled: %v)",
		len(known), len(msgs), settings.ChatEnabled)

	broker := chat.NewBroker()
	svc := moderation.NewService(directory, room, broker)

	// Persistence tap: every successful mutation flows back to sqlite.
	persistSub := broker.Subscribe("persistence", "")
	go persist(persistSub, archive, accounts, database)

	listener := server.NewListener(cfg.Server.ChatPort, cfg.Server.MaxClients, func(conn net.Conn) {
		s := server.NewSession(conn, svc, broker, accounts, database, cfg.Stream.HistoryLines)
		s.Run()
	})

	go func() {
		if err := listener.ListenAndServe(); err != nil {
			log.Fatalf("Chat server error: %v", err)
		}
	}()

	// --- Health server ---
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	healthServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HealthPort),
		Handler:           healthMux,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Health server error: %v", err)
		}
	}()

	fmt.Printf("\n%s is running\n", settings.Title)
	fmt.Printf("  Chat:   port %d\n", cfg.Server.ChatPort)
	fmt.Printf("  Health: port %d\n", cfg.Server.HealthPort)
	fmt.Println("\nPress Ctrl+C to shut down.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	log.Printf("Received signal %v, shutting down...", sig)
	broker.Publish(chat.Event{Type: chat.EventNotice, Text: "server is shutting down"})
	log.Printf("%s shut down complete.", settings.Title)
}

// persist mirrors moderation events into the durable record so the next
// start restores the same state.
func persist(sub *chat.Subscriber, archive *chat.Archive, accounts *user.Repo, database *db.DB) {
	for ev := range sub.Ch {
		var err error
		switch ev.Type {
		case chat.EventMessagePosted:
			if ev.Message != nil {
				err = archive.Append(*ev.Message)
			}
		case chat.EventMessageDeleted:
			if ev.Message != nil {
				err = archive.Delete(ev.Message.ID)
			}
		case chat.EventChatCleared:
			err = archive.Clear()
		case chat.EventChatToggled:
			var settings *db.StreamSettings
			if settings, err = database.GetStreamSettings(); err == nil {
				settings.ChatEnabled = ev.Enabled
				err = database.UpdateStreamSettings(settings)
			}
		case chat.EventUserMuted:
			if ev.User != nil {
				err = accounts.UpdateWritePrivilege(ev.User.ID, false)
			}
		case chat.EventUserUnmuted:
			if ev.User != nil {
				err = accounts.UpdateWritePrivilege(ev.User.ID, true)
			}
		case chat.EventUserRemoved:
			if ev.User != nil {
				err = accounts.Delete(ev.User.ID)
			}
		case chat.EventRoleChanged:
			if ev.User != nil {
				err = accounts.UpdateRole(ev.User.ID, ev.User.Role)
			}
		}
		if err != nil {
			log.Printf("persist %s: %v", ev.Type, err)
		}
	}
}
