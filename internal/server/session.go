package server

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/velsgot/velsgot/internal/chat"
	"github.com/velsgot/velsgot/internal/db"
	"github.com/velsgot/velsgot/internal/moderation"
	"github.com/velsgot/velsgot/internal/role"
	"github.com/velsgot/velsgot/internal/user"
)

// Session serves one chat connection speaking the line protocol:
// "/command args" lines for control, anything else is a chat message.
type Session struct {
	conn     net.Conn
	svc      *moderation.Service
	broker   *chat.Broker
	accounts *user.Repo
	database *db.DB
	history  int

	token  string
	self   user.User
	authed bool

	writeMu sync.Mutex
	done    chan struct{}
}

// NewSession wires a session for an accepted connection.
func NewSession(conn net.Conn, svc *moderation.Service, broker *chat.Broker, accounts *user.Repo, database *db.DB, history int) *Session {
	return &Session{
		conn:     conn,
		svc:      svc,
		broker:   broker,
		accounts: accounts,
		database: database,
		history:  history,
		token:    uuid.NewString(),
		done:     make(chan struct{}),
	}
}

// Run executes the session until the peer disconnects.
func (s *Session) Run() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("session %s panic: %v", s.token, r)
		}
		close(s.done)
		s.broker.Unsubscribe(s.token)
		s.conn.Close()
		log.Printf("session %s disconnected (%s)", s.token, s.conn.RemoteAddr())
	}()

	log.Printf("session %s connected from %s", s.token, s.conn.RemoteAddr())
	s.sendLn("* welcome to VELSGOT chat")
	s.sendLn("* /login <nick> <password> or /register <nick> <password> [contact]")

	scanner := bufio.NewScanner(s.conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !s.handle(line) {
			return
		}
	}
}

// handle processes one line. Returns false when the session should end.
func (s *Session) handle(line string) bool {
	if !strings.HasPrefix(line, "/") {
		s.say(line)
		return true
	}

	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/quit":
		s.sendLn("* goodbye")
		return false
	case "/login":
		s.login(args)
	case "/register":
		s.register(args)
	case "/who":
		s.who()
	case "/profile":
		s.profile()
	default:
		if !s.authed {
			s.sendLn("! log in first")
			return true
		}
		s.refreshSelf()
		switch cmd {
		case "/find":
			s.find(strings.Join(args, " "))
		case "/users":
			s.listUsers(s.svc.Users())
		case "/history":
			s.sendHistory()
		case "/mute":
			s.targetOp(args, s.svc.MuteUser)
		case "/unmute":
			s.targetOp(args, s.svc.UnmuteUser)
		case "/ban":
			s.targetOp(args, s.svc.BanUser)
		case "/del":
			s.targetOp(args, s.svc.DeleteMessage)
		case "/role":
			s.changeRole(args)
		case "/clear":
			s.report(s.svc.ClearChat(s.self.ID))
		case "/chat":
			s.toggleChat(args)
		case "/video":
			s.setVideo(strings.Join(args, " "))
		default:
			s.sendLn("! unknown command " + cmd)
		}
	}
	return true
}

func (s *Session) login(args []string) {
	if s.authed {
		s.sendLn("! already logged in")
		return
	}
	if len(args) != 2 {
		s.sendLn("! usage: /login <nick> <password>")
		return
	}

	acct, err := s.accounts.Authenticate(args[0], args[1])
	if err != nil {
		s.sendLn("! login failed")
		return
	}

	// The stored identity is authoritative; the directory picks it up
	// under its persisted id and role.
	s.svc.Adopt(*acct)
	s.self = *acct
	s.authed = true

	sub := s.broker.Subscribe(s.token, acct.Nickname)
	go s.pump(sub)

	label, _ := acct.Role.Label()
	s.sendLn(fmt.Sprintf("* logged in as %s [%s] (id %d)", acct.Nickname, label, acct.ID))
	if !s.svc.ChatEnabled() {
		s.sendLn("* chat is currently disabled")
	}
	s.sendHistory()
	s.broker.Publish(chat.Event{Type: chat.EventNotice, Text: acct.Nickname + " joined"})
}

func (s *Session) register(args []string) {
	if len(args) < 2 {
		s.sendLn("! usage: /register <nick> <password> [contact]")
		return
	}
	nick, password := args[0], args[1]
	contact := strings.Join(args[2:], " ")

	if s.accounts.Exists(nick) {
		s.sendLn("! nickname already taken")
		return
	}

	// Registrations are always plain users. Elevation only happens via a
	// creator-issued /role afterwards.
	acct, err := s.accounts.Create(nick, password, contact, role.User)
	if err != nil {
		s.sendLn("! registration failed")
		log.Printf("session %s register: %v", s.token, err)
		return
	}
	s.svc.Adopt(*acct)
	s.broker.Publish(chat.Event{Type: chat.EventUserRegistered, User: acct})
	s.sendLn(fmt.Sprintf("* registered %s (id %d), now /login", acct.Nickname, acct.ID))
}

func (s *Session) say(text string) {
	if !s.authed {
		s.sendLn("! log in first")
		return
	}
	if _, err := s.svc.SendMessage(s.self.ID, text); err != nil {
		s.report(err)
	}
}

func (s *Session) who() {
	names := s.broker.Online()
	if len(names) == 0 {
		s.sendLn("* nobody is watching")
		return
	}
	s.sendLn("* online: " + strings.Join(names, ", "))
}

func (s *Session) profile() {
	if !s.authed {
		s.sendLn("! log in first")
		return
	}
	s.refreshSelf()
	label, _ := s.self.Role.Label()
	s.sendLn(fmt.Sprintf("* %s [%s]", s.self.Nickname, label))
	for _, grant := range role.Capabilities(s.self.Role) {
		s.sendLn("*   - " + grant)
	}
}

func (s *Session) find(query string) {
	s.listUsers(s.svc.FindUsers(query))
}

func (s *Session) listUsers(users []user.User) {
	if len(users) == 0 {
		s.sendLn("* no users found")
		return
	}
	for _, u := range users {
		label, _ := u.Role.Label()
		muted := ""
		if !u.CanWrite {
			muted = " (muted)"
		}
		s.sendLn(fmt.Sprintf("* %4d  %s [%s]%s", u.ID, u.Nickname, label, muted))
	}
}

func (s *Session) sendHistory() {
	msgs := s.svc.Messages()
	if s.history > 0 && len(msgs) > s.history {
		msgs = msgs[len(msgs)-s.history:]
	}
	for _, m := range msgs {
		s.sendMessageLine(m)
	}
}

// targetOp runs a moderation command of the form "/cmd <id>".
func (s *Session) targetOp(args []string, op func(actorID, targetID int64) error) {
	if len(args) != 1 {
		s.sendLn("! usage: expected a single id")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		s.sendLn("! not a valid id: " + args[0])
		return
	}
	s.report(op(s.self.ID, id))
}

func (s *Session) changeRole(args []string) {
	if len(args) != 2 {
		s.sendLn("! usage: /role <id> <role>")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		s.sendLn("! not a valid id: " + args[0])
		return
	}
	newRole, err := role.Parse(args[1])
	if err != nil {
		s.report(err)
		return
	}
	s.report(s.svc.ChangeUserRole(s.self.ID, id, newRole))
}

func (s *Session) toggleChat(args []string) {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		s.sendLn("! usage: /chat on|off")
		return
	}
	s.report(s.svc.SetChatEnabled(s.self.ID, args[0] == "on"))
}

// setVideo updates the stream video source. The check reuses the same
// matrix as the chat moderation ops; the setting itself lives outside
// the moderation core.
func (s *Session) setVideo(url string) {
	if !role.CanChangeVideo(s.self.Role) {
		s.sendLn("! forbidden")
		return
	}
	if strings.TrimSpace(url) == "" {
		s.sendLn("! usage: /video <url>")
		return
	}

	settings, err := s.database.GetStreamSettings()
	if err != nil {
		s.report(err)
		return
	}
	settings.VideoURL = strings.TrimSpace(url)
	if err := s.database.UpdateStreamSettings(settings); err != nil {
		s.report(err)
		return
	}
	s.broker.Publish(chat.Event{Type: chat.EventNotice, Text: "video source changed"})
}

// refreshSelf re-reads the actor from the directory so a role change or
// ban during the session takes effect on the next command.
func (s *Session) refreshSelf() {
	if u, ok := s.svc.GetUser(s.self.ID); ok {
		s.self = u
	}
}

// pump forwards broker events to the peer until the session ends.
func (s *Session) pump(sub *chat.Subscriber) {
	for {
		select {
		case <-s.done:
			return
		case ev := <-sub.Ch:
			s.sendEvent(ev)
		}
	}
}

func (s *Session) sendEvent(ev chat.Event) {
	switch ev.Type {
	case chat.EventMessagePosted:
		if ev.Message != nil {
			s.sendMessageLine(*ev.Message)
		}
	case chat.EventMessageDeleted:
		if ev.Message != nil {
			s.sendLn(fmt.Sprintf("* message %d deleted", ev.Message.ID))
		}
	case chat.EventChatCleared:
		s.sendLn("* chat cleared")
	case chat.EventChatToggled:
		if ev.Enabled {
			s.sendLn("* chat enabled")
		} else {
			s.sendLn("* chat disabled")
		}
	case chat.EventUserMuted:
		if ev.User != nil {
			s.sendLn("* " + ev.User.Nickname + " muted")
		}
	case chat.EventUserUnmuted:
		if ev.User != nil {
			s.sendLn("* " + ev.User.Nickname + " unmuted")
		}
	case chat.EventUserRemoved:
		if ev.User != nil {
			s.sendLn("* " + ev.User.Nickname + " removed")
		}
	case chat.EventRoleChanged:
		if ev.User != nil {
			label, _ := ev.User.Role.Label()
			s.sendLn("* " + ev.User.Nickname + " is now " + label)
		}
	case chat.EventNotice:
		s.sendLn("* " + ev.Text)
	}
}

func (s *Session) sendMessageLine(m chat.Message) {
	label, _ := m.Author.Role.Label()
	s.sendLn(fmt.Sprintf("[%s] %s <%s>: %s",
		m.CreatedAt.Format("15:04"), m.Author.Nickname, label, m.Text))
}

// report translates a core failure into a protocol line. The core
// guarantees state is unchanged whenever one of these comes back.
func (s *Session) report(err error) {
	switch {
	case err == nil:
		s.sendLn("* ok")
	case errors.Is(err, user.ErrForbidden), errors.Is(err, chat.ErrForbidden):
		s.sendLn("! forbidden")
	case errors.Is(err, user.ErrNotFound), errors.Is(err, chat.ErrNotFound):
		s.sendLn("! not found")
	case errors.Is(err, role.ErrUnknownRole):
		s.sendLn("! unknown role")
	case errors.Is(err, chat.ErrChatDisabled):
		s.sendLn("! chat is disabled")
	case errors.Is(err, chat.ErrWriteDenied):
		s.sendLn("! you are muted")
	case errors.Is(err, chat.ErrEmptyMessage):
		s.sendLn("! empty message")
	default:
		s.sendLn("! " + err.Error())
	}
}

func (s *Session) sendLn(line string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	fmt.Fprintf(s.conn, "%s\r\n", line)
}
