package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"vacationRentalWebsite/internal/models"
)

// Persisted key names. Both are always written and cleared together.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Store is the persisted half of a session
type Store interface {
	// Load returns every persisted key. A missing session is an empty map, not an error.
	Load() (map[string]string, error)
	// Save writes all given keys in one operation.
	Save(values map[string]string) error
	Clear() error
}

// Authenticator is the slice of the booking API the session needs
type Authenticator interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	Register(ctx context.Context, reg models.Registration) (*models.AuthResult, error)
}

// State is a read-only snapshot of the session
type State struct {
	User      *models.User
	Token     string
	IsLoading bool
}

// IsAuthenticated is true iff both user and token are present
func (s State) IsAuthenticated() bool {
	return s.User != nil && s.Token != ""
}

// Role returns the user's role or an empty role when signed out
func (s State) Role() models.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// SessionManager owns the authenticated actor for one request. It starts in
// the loading state until Restore runs.
type SessionManager struct {
	mu     sync.RWMutex
	store  Store
	auth   Authenticator
	state  State
	subs   map[int]func(State)
	nextID int
}

// NewSessionManager creates a session in the loading state
func NewSessionManager(store Store, auth Authenticator) *SessionManager {
	return &SessionManager{
		store: store,
		auth:  auth,
		state: State{IsLoading: true},
		subs:  make(map[int]func(State)),
	}
}

// Snapshot returns the current state
func (m *SessionManager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Subscribe registers fn to run after every state change and returns a
// function that removes it.
func (m *SessionManager) Subscribe(fn func(State)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *SessionManager) setState(s State) {
	m.mu.Lock()
	m.state = s
	fns := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// Restore reads the persisted session without calling the API. The state is
// always settled afterwards. A non-nil error means persisted data was found
// to be corrupt or partial and has been cleared.
func (m *SessionManager) Restore() error {
	values, err := m.store.Load()
	if err != nil {
		m.discard()
		return fmt.Errorf("%w: %v", ErrCorruptSession, err)
	}

	token := values[KeyToken]
	rawUser := values[KeyUser]

	if token == "" && rawUser == "" {
		m.setState(State{})
		return nil
	}
	if token == "" || rawUser == "" {
		m.discard()
		return fmt.Errorf("%w: only one of token and user is present", ErrCorruptSession)
	}

	var user models.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		m.discard()
		return fmt.Errorf("%w: %v", ErrCorruptSession, err)
	}
	if user.ID == "" && user.Email == "" {
		m.discard()
		return fmt.Errorf("%w: empty user record", ErrCorruptSession)
	}

	m.setState(State{User: &user, Token: token})
	return nil
}

func (m *SessionManager) discard() {
	_ = m.store.Clear()
	m.setState(State{})
}

// Login authenticates with the API and persists the result. On failure the
// API error is returned untouched and the state does not change.
func (m *SessionManager) Login(ctx context.Context, email, password string) error {
	res, err := m.auth.Login(ctx, models.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}
	return m.establish(res)
}

// Register creates an account and signs it in immediately
func (m *SessionManager) Register(ctx context.Context, name, email, password, phone string) error {
	res, err := m.auth.Register(ctx, models.Registration{
		Name:     name,
		Email:    email,
		Password: password,
		Phone:    phone,
	})
	if err != nil {
		return err
	}
	return m.establish(res)
}

func (m *SessionManager) establish(res *models.AuthResult) error {
	if res == nil || res.Token == "" || res.User == nil {
		return ErrIncompleteAuth
	}
	if err := m.persist(res.Token, res.User); err != nil {
		return err
	}
	m.setState(State{User: res.User, Token: res.Token})
	return nil
}

func (m *SessionManager) persist(token string, user *models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}
	if err := m.store.Save(map[string]string{KeyToken: token, KeyUser: string(raw)}); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// Logout clears the persisted keys and signs out. It never fails.
func (m *SessionManager) Logout() {
	_ = m.store.Clear()
	m.setState(State{})
}

// UpdateUser replaces the stored user record and keeps the token
func (m *SessionManager) UpdateUser(user *models.User) error {
	current := m.Snapshot()
	if !current.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if user == nil {
		return fmt.Errorf("update session user: nil user")
	}
	if err := m.persist(current.Token, user); err != nil {
		return err
	}
	m.setState(State{User: user, Token: current.Token})
	return nil
}
