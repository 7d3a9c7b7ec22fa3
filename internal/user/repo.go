package user

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/velsgot/velsgot/internal/role"
)

// ErrInvalidCredentials is returned by Authenticate for both an unknown
// nickname and a wrong password, so callers cannot probe which one it was.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Repo handles database operations for accounts. The directory holds the
// live session state; the repo is the credential store and the durable
// record behind it.
type Repo struct {
	db *sql.DB
}

// NewRepo creates a new account repository.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Create inserts a new account with a hashed password. Public registration
// always passes role.User; elevated roles only enter through the seed path
// or a creator-approved role change.
func (r *Repo) Create(nickname, password, contact string, ro role.Role) (*User, error) {
	if !ro.Valid() {
		return nil, fmt.Errorf("create account %q: %w: %q", nickname, role.ErrUnknownRole, string(ro))
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	result, err := r.db.Exec(`
		INSERT INTO accounts (nickname, password_hash, contact, role, can_write)
		VALUES (?, ?, ?, ?, 1)
	`, nickname, hash, contact, string(ro))
	if err != nil {
		return nil, fmt.Errorf("create account %s: %w", nickname, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get account id: %w", err)
	}

	return r.GetByID(id)
}

// Authenticate checks nickname/password against the stored credentials and
// returns the account if valid. The stored role wins: a caller never gets
// to declare its own role at login.
func (r *Repo) Authenticate(nickname, password string) (*User, error) {
	var hash string
	u := &User{}
	var roleStr string

	err := r.db.QueryRow(`
		SELECT id, nickname, password_hash, contact, role, can_write, created_at
		FROM accounts WHERE nickname = ? COLLATE NOCASE
	`, nickname).Scan(&u.ID, &u.Nickname, &hash, &u.Contact, &roleStr, &u.CanWrite, &u.CreatedAt)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !CheckPassword(password, hash) {
		return nil, ErrInvalidCredentials
	}

	u.Role, err = role.Parse(roleStr)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", nickname, err)
	}

	return u, nil
}

// GetByID retrieves an account by id.
func (r *Repo) GetByID(id int64) (*User, error) {
	u := &User{}
	var roleStr string

	err := r.db.QueryRow(`
		SELECT id, nickname, contact, role, can_write, created_at
		FROM accounts WHERE id = ?
	`, id).Scan(&u.ID, &u.Nickname, &u.Contact, &roleStr, &u.CanWrite, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get account %d: %w", id, err)
	}

	u.Role, err = role.Parse(roleStr)
	if err != nil {
		return nil, fmt.Errorf("account %d: %w", id, err)
	}

	return u, nil
}

// Exists checks if a nickname is already taken.
func (r *Repo) Exists(nickname string) bool {
	var count int
	r.db.QueryRow("SELECT COUNT(*) FROM accounts WHERE nickname = ? COLLATE NOCASE", nickname).Scan(&count)
	return count > 0
}

// List returns all accounts in creation order.
func (r *Repo) List() ([]User, error) {
	rows, err := r.db.Query(`
		SELECT id, nickname, contact, role, can_write, created_at
		FROM accounts ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		var roleStr string
		if err := rows.Scan(&u.ID, &u.Nickname, &u.Contact, &roleStr, &u.CanWrite, &u.CreatedAt); err != nil {
			return nil, err
		}
		if u.Role, err = role.Parse(roleStr); err != nil {
			return nil, fmt.Errorf("account %d: %w", u.ID, err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateRole changes an account's stored role.
func (r *Repo) UpdateRole(id int64, ro role.Role) error {
	if !ro.Valid() {
		return fmt.Errorf("update role of account %d: %w: %q", id, role.ErrUnknownRole, string(ro))
	}
	_, err := r.db.Exec("UPDATE accounts SET role = ? WHERE id = ?", string(ro), id)
	return err
}

// UpdateWritePrivilege persists a mute or unmute.
func (r *Repo) UpdateWritePrivilege(id int64, allowed bool) error {
	_, err := r.db.Exec("UPDATE accounts SET can_write = ? WHERE id = ?", allowed, id)
	return err
}

// UpdatePassword changes an account's password.
func (r *Repo) UpdatePassword(id int64, newPassword string) error {
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	_, err = r.db.Exec("UPDATE accounts SET password_hash = ? WHERE id = ?", hash, id)
	return err
}

// Delete removes an account permanently.
func (r *Repo) Delete(id int64) error {
	_, err := r.db.Exec("DELETE FROM accounts WHERE id = ?", id)
	return err
}

// SeedCreator ensures exactly one creator account exists. On first run it
// creates one from the configured credentials; afterwards it returns the
// existing creator untouched, so the singleton policy lives here rather
// than in the directory.
func (r *Repo) SeedCreator(nickname, password string) (*User, error) {
	var id int64
	err := r.db.QueryRow("SELECT id FROM accounts WHERE role = ? ORDER BY id LIMIT 1",
		string(role.Creator)).Scan(&id)
	if err == nil {
		return r.GetByID(id)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find creator: %w", err)
	}

	return r.Create(nickname, password, "", role.Creator)
}
