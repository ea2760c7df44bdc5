package backend

import (
	"errors"
	"strings"
	"sync"
)

var (
	// ErrUserExists is returned when the userName or email is already registered.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when no user matches the identifier.
	ErrUserNotFound = errors.New("user not found")
)

// User is a registered account.
type User struct {
	ID           string
	UserName     string
	Email        string
	PasswordHash string
}

type userDirectory struct {
	mu      sync.RWMutex
	byID    map[string]User
	byName  map[string]string
	byEmail map[string]string
}

func newUserDirectory() *userDirectory {
	return &userDirectory{
		byID:    make(map[string]User),
		byName:  make(map[string]string),
		byEmail: make(map[string]string),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (d *userDirectory) create(u User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	email := normalizeEmail(u.Email)
	if _, ok := d.byName[u.UserName]; ok {
		return ErrUserExists
	}
	if email != "" {
		if _, ok := d.byEmail[email]; ok {
			return ErrUserExists
		}
		d.byEmail[email] = u.ID
	}
	d.byName[u.UserName] = u.ID
	d.byID[u.ID] = u
	return nil
}

// lookup resolves a user by userName first, then by email.
func (d *userDirectory) lookup(userName, email string) (User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if id, ok := d.byName[userName]; ok && userName != "" {
		return d.byID[id], nil
	}
	if id, ok := d.byEmail[normalizeEmail(email)]; ok && email != "" {
		return d.byID[id], nil
	}
	return User{}, ErrUserNotFound
}

func (d *userDirectory) len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byID)
}
