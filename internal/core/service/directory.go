package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/safad/worklog/internal/core/domain"
	"github.com/safad/worklog/internal/core/ports"
	"github.com/safad/worklog/internal/metrics"
)

// Directory implements ports.DirectoryService. Every mutation persists the
// full user list (and the session slot when it changes) before the
// in-memory state is replaced, so a failed write leaves the directory as it
// was.
type Directory struct {
	mu      sync.RWMutex
	kv      ports.KVStore
	users   []domain.User
	session *domain.User
	cost    int
	latency time.Duration
	log     zerolog.Logger
}

var _ ports.DirectoryService = (*Directory)(nil)

func loadDirectory(ctx context.Context, kv ports.KVStore, opts Options) (*Directory, error) {
	d := &Directory{
		kv:      kv,
		cost:    opts.BcryptCost,
		latency: opts.SimulatedLatency,
		log:     *opts.Logger,
	}

	var users []domain.User
	found, err := loadDocument(ctx, kv, ports.KeyUsers, &users, d.log)
	if err != nil {
		return nil, err
	}
	switch {
	case found && indexByID(users, domain.SeedAdminID) < 0 &&
		indexByUsername(users, domain.SeedAdminUsername, "") >= 0:
		d.log.Warn().Msg("seed admin missing but its username is taken; not reseeding")
	case !found || indexByID(users, domain.SeedAdminID) < 0:
		seed := domain.SeedAdmin()
		if seed.Password, err = hashPassword(seed.Password, d.cost); err != nil {
			return nil, fmt.Errorf("seed admin: %w", err)
		}
		users = append([]domain.User{seed}, users...)
		if err := saveDocument(ctx, kv, ports.KeyUsers, users); err != nil {
			return nil, err
		}
		d.log.Debug().Int("users", len(users)).Msg("seeded admin account")
	}
	d.users = users

	var session domain.User
	found, err = loadDocument(ctx, kv, ports.KeySession, &session, d.log)
	if err != nil {
		return nil, err
	}
	if found && indexByID(users, session.ID) >= 0 {
		d.session = &session
	}
	return d, nil
}

// Register creates an employee account. The username must not match any
// existing username case-insensitively.
func (d *Directory) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if err := wait(ctx, d.latency); err != nil {
		return nil, err
	}
	if in.Username == "" || in.Password == "" || strings.TrimSpace(in.Name) == "" {
		metrics.RegistrationsTotal.WithLabelValues("invalid_input").Inc()
		return nil, domain.ErrInvalidInput
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if indexByUsername(d.users, in.Username, "") >= 0 {
		metrics.RegistrationsTotal.WithLabelValues("duplicate_username").Inc()
		return nil, domain.ErrDuplicateUsername
	}

	hash, err := hashPassword(in.Password, d.cost)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			metrics.RegistrationsTotal.WithLabelValues("invalid_input").Inc()
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	user := domain.User{
		ID:         id,
		Username:   in.Username,
		Password:   hash,
		Name:       in.Name,
		Role:       domain.RoleEmployee,
		Department: domain.NormalizeDepartment(in.Department),
		AvatarURL:  domain.Initials(in.Name),
	}

	next := append(cloneUsers(d.users), user)
	if err := saveDocument(ctx, d.kv, ports.KeyUsers, next); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	d.users = next

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	out := user.Public()
	return &out, nil
}

// Login opens a session for the account matching username
// case-insensitively. On failure the current session is left untouched.
func (d *Directory) Login(ctx context.Context, username, password string) (*domain.User, error) {
	if err := wait(ctx, d.latency); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	idx := indexByUsername(d.users, username, "")
	if idx < 0 || !checkPassword(d.users[idx].Password, password) {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	session := d.users[idx].Public()
	if err := saveDocument(ctx, d.kv, ports.KeySession, session); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	d.session = &session

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	out := session
	return &out, nil
}

// Logout clears the session slot. Calling it without a session is a no-op.
func (d *Directory) Logout(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.logoutLocked(ctx)
}

func (d *Directory) logoutLocked(ctx context.Context) error {
	if err := d.kv.Delete(ctx, ports.KeySession); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	d.session = nil
	return nil
}

// Current returns a copy of the logged-in user.
func (d *Directory) Current() (*domain.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.session == nil {
		return nil, false
	}
	out := *d.session
	return &out, true
}

// UpdateUser replaces the stored account with the same id. Empty Username,
// Role and AvatarURL keep the stored values; an empty Password keeps the
// stored hash and a non-empty one is hashed. If the account is the current
// session, the session copy is refreshed too.
func (d *Directory) UpdateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx := indexByID(d.users, user.ID)
	if idx < 0 {
		return nil, domain.ErrUserNotFound
	}
	existing := d.users[idx]

	if user.Role == "" {
		user.Role = existing.Role
	}
	if user.Role != domain.RoleAdmin && user.Role != domain.RoleEmployee {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, user.Role)
	}
	if existing.IsSeedAdmin() && user.Role != existing.Role {
		return nil, domain.ErrProtectedAccount
	}
	if user.Username == "" {
		user.Username = existing.Username
	}
	if indexByUsername(d.users, user.Username, user.ID) >= 0 {
		return nil, domain.ErrDuplicateUsername
	}
	if strings.TrimSpace(user.Name) == "" {
		user.Name = existing.Name
	}
	if user.AvatarURL == "" {
		user.AvatarURL = existing.AvatarURL
	}
	user.Department = domain.NormalizeDepartment(user.Department)

	if user.Password == "" {
		user.Password = existing.Password
	} else {
		hash, err := hashPassword(user.Password, d.cost)
		if err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		user.Password = hash
	}

	next := cloneUsers(d.users)
	next[idx] = user
	if err := saveDocument(ctx, d.kv, ports.KeyUsers, next); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if d.session != nil && d.session.ID == user.ID {
		session := user.Public()
		if err := saveDocument(ctx, d.kv, ports.KeySession, session); err != nil {
			if !d.restoreUsers(ctx) {
				d.users = next
			}
			return nil, fmt.Errorf("update user: %w", err)
		}
		d.session = &session
	}
	d.users = next

	out := user.Public()
	return &out, nil
}

// SetPassword replaces the password of an account.
func (d *Directory) SetPassword(ctx context.Context, id, password string) error {
	if password == "" {
		return domain.ErrInvalidInput
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	idx := indexByID(d.users, id)
	if idx < 0 {
		return domain.ErrUserNotFound
	}
	hash, err := hashPassword(password, d.cost)
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}

	next := cloneUsers(d.users)
	next[idx].Password = hash
	if err := saveDocument(ctx, d.kv, ports.KeyUsers, next); err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	d.users = next
	return nil
}

// DeleteUser removes an account. The seed admin is protected, a missing id
// is a no-op, and deleting the logged-in account logs it out. Records owned
// by the account stay in the ledger.
func (d *Directory) DeleteUser(ctx context.Context, id string) error {
	if id == domain.SeedAdminID {
		return domain.ErrProtectedAccount
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	idx := indexByID(d.users, id)
	if idx < 0 {
		return nil
	}

	next := make([]domain.User, 0, len(d.users)-1)
	next = append(next, d.users[:idx]...)
	next = append(next, d.users[idx+1:]...)
	if err := saveDocument(ctx, d.kv, ports.KeyUsers, next); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if d.session != nil && d.session.ID == id {
		if err := d.kv.Delete(ctx, ports.KeySession); err != nil {
			if !d.restoreUsers(ctx) {
				// The store no longer holds the account.
				d.users = next
				d.session = nil
			}
			return fmt.Errorf("delete user: logout: %w", err)
		}
		d.session = nil
	}
	d.users = next
	return nil
}

// restoreUsers writes d.users back after a later write of the same operation
// failed. It reports whether the store matches d.users again.
func (d *Directory) restoreUsers(ctx context.Context) bool {
	if err := saveDocument(ctx, d.kv, ports.KeyUsers, d.users); err != nil {
		d.log.Warn().Err(err).Msg("restore users document")
		return false
	}
	return true
}

// UserByID returns the account with id, without its password.
func (d *Directory) UserByID(id string) (*domain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	idx := indexByID(d.users, id)
	if idx < 0 {
		return nil, domain.ErrUserNotFound
	}
	out := d.users[idx].Public()
	return &out, nil
}

// AllUsers returns every account in registration order, without passwords.
func (d *Directory) AllUsers() []domain.User {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]domain.User, len(d.users))
	for i, u := range d.users {
		out[i] = u.Public()
	}
	return out
}

func indexByID(users []domain.User, id string) int {
	for i, u := range users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

// indexByUsername finds the first user whose username matches
// case-insensitively, skipping the user with id exceptID.
func indexByUsername(users []domain.User, username, exceptID string) int {
	for i, u := range users {
		if u.ID != exceptID && domain.SameUsername(u.Username, username) {
			return i
		}
	}
	return -1
}

func cloneUsers(users []domain.User) []domain.User {
	return append(make([]domain.User, 0, len(users)+1), users...)
}
