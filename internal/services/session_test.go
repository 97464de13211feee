package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vacationRentalWebsite/internal/models"
)

// memStore is an in-memory Store
type memStore struct {
	values  map[string]string
	loadErr error
	saveErr error
	saves   int
	clears  int
}

func newMemStore(values map[string]string) *memStore {
	if values == nil {
		values = map[string]string{}
	}
	return &memStore{values: values}
}

func (s *memStore) Load() (map[string]string, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out, nil
}

func (s *memStore) Save(values map[string]string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	for k, v := range values {
		s.values[k] = v
	}
	return nil
}

func (s *memStore) Clear() error {
	s.clears++
	s.values = map[string]string{}
	s.loadErr = nil
	return nil
}

// stubAuth returns canned auth results
type stubAuth struct {
	result *models.AuthResult
	err    error
	creds  models.Credentials
	reg    models.Registration
}

func (a *stubAuth) Login(_ context.Context, creds models.Credentials) (*models.AuthResult, error) {
	a.creds = creds
	return a.result, a.err
}

func (a *stubAuth) Register(_ context.Context, reg models.Registration) (*models.AuthResult, error) {
	a.reg = reg
	return a.result, a.err
}

func userJSON(t *testing.T, u *models.User) string {
	t.Helper()
	raw, err := json.Marshal(u)
	require.NoError(t, err)
	return string(raw)
}

var ana = &models.User{ID: "u1", Name: "Ana", Email: "ana@example.com", Role: models.RoleUser, Phone: "555"}

func TestNewSessionManager_StartsLoading(t *testing.T) {
	m := NewSessionManager(newMemStore(nil), &stubAuth{})

	s := m.Snapshot()
	assert.True(t, s.IsLoading)
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, PhaseLoading, PhaseOf(s))
}

func TestRestore_ValidSession(t *testing.T) {
	store := newMemStore(map[string]string{KeyToken: "tok", KeyUser: userJSON(t, ana)})
	m := NewSessionManager(store, &stubAuth{})

	require.NoError(t, m.Restore())

	s := m.Snapshot()
	assert.True(t, s.IsAuthenticated())
	assert.False(t, s.IsLoading)
	assert.Equal(t, "tok", s.Token)
	assert.Equal(t, ana, s.User)
	assert.Zero(t, store.clears)
}

func TestRestore_CorruptUserClearsStorage(t *testing.T) {
	store := newMemStore(map[string]string{KeyToken: "tok", KeyUser: "{not json"})
	m := NewSessionManager(store, &stubAuth{})

	err := m.Restore()
	assert.ErrorIs(t, err, ErrCorruptSession)

	s := m.Snapshot()
	assert.False(t, s.IsAuthenticated())
	assert.False(t, s.IsLoading)
	assert.Empty(t, store.values)
}

func TestRestore_PartialStateIsDiscarded(t *testing.T) {
	cases := map[string]map[string]string{
		"token only": {KeyToken: "tok"},
		"user only":  {KeyUser: `{"_id":"u1","email":"a@b.c","role":"user"}`},
		"null user":  {KeyToken: "tok", KeyUser: "null"},
		"empty user": {KeyToken: "tok", KeyUser: "{}"},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			store := newMemStore(values)
			m := NewSessionManager(store, &stubAuth{})

			assert.ErrorIs(t, m.Restore(), ErrCorruptSession)
			assert.False(t, m.Snapshot().IsAuthenticated())
			assert.False(t, m.Snapshot().IsLoading)
			assert.Empty(t, store.values)
		})
	}
}

func TestRestore_UnreadableStoreIsRepaired(t *testing.T) {
	store := newMemStore(nil)
	store.loadErr = errors.New("securecookie: the value is not valid")
	m := NewSessionManager(store, &stubAuth{})

	assert.ErrorIs(t, m.Restore(), ErrCorruptSession)
	assert.Equal(t, 1, store.clears)
	assert.Equal(t, PhaseUnauthenticated, PhaseOf(m.Snapshot()))
}

func TestRestore_EmptyStoreDoesNotWrite(t *testing.T) {
	store := newMemStore(nil)
	m := NewSessionManager(store, &stubAuth{})

	require.NoError(t, m.Restore())
	assert.Zero(t, store.clears)
	assert.Zero(t, store.saves)
	assert.Equal(t, PhaseUnauthenticated, PhaseOf(m.Snapshot()))
}

func TestLogin_PersistsTokenAndUserTogether(t *testing.T) {
	store := newMemStore(nil)
	auth := &stubAuth{result: &models.AuthResult{Token: "tok-2", User: ana}}
	m := NewSessionManager(store, auth)
	require.NoError(t, m.Restore())

	require.NoError(t, m.Login(context.Background(), "ana@example.com", "secret1"))

	assert.Equal(t, "ana@example.com", auth.creds.Email)
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, "tok-2", store.values[KeyToken])
	assert.JSONEq(t, userJSON(t, ana), store.values[KeyUser])
	assert.True(t, m.Snapshot().IsAuthenticated())
}

func TestLogin_FailureLeavesStateUntouched(t *testing.T) {
	store := newMemStore(nil)
	apiErr := errors.New("invalid credentials")
	m := NewSessionManager(store, &stubAuth{err: apiErr})
	require.NoError(t, m.Restore())

	err := m.Login(context.Background(), "ana@example.com", "wrong")
	assert.Same(t, apiErr, err)
	assert.False(t, m.Snapshot().IsAuthenticated())
	assert.Empty(t, store.values)
}

func TestLogin_IncompleteResponseIsRejected(t *testing.T) {
	store := newMemStore(nil)
	m := NewSessionManager(store, &stubAuth{result: &models.AuthResult{Token: "tok"}})
	require.NoError(t, m.Restore())

	assert.ErrorIs(t, m.Login(context.Background(), "a@b.c", "pw"), ErrIncompleteAuth)
	assert.Empty(t, store.values)
}

func TestLogin_StoreFailureDoesNotAuthenticate(t *testing.T) {
	store := newMemStore(nil)
	store.saveErr = errors.New("disk full")
	m := NewSessionManager(store, &stubAuth{result: &models.AuthResult{Token: "tok", User: ana}})
	require.NoError(t, m.Restore())

	assert.Error(t, m.Login(context.Background(), "a@b.c", "pw"))
	assert.False(t, m.Snapshot().IsAuthenticated())
}

func TestRegister_AuthenticatesImmediately(t *testing.T) {
	store := newMemStore(nil)
	auth := &stubAuth{result: &models.AuthResult{Token: "tok-3", User: ana}}
	m := NewSessionManager(store, auth)
	require.NoError(t, m.Restore())

	require.NoError(t, m.Register(context.Background(), "Ana", "ana@example.com", "secret1", "555"))

	assert.Equal(t, "555", auth.reg.Phone)
	assert.True(t, m.Snapshot().IsAuthenticated())
	assert.Equal(t, "tok-3", store.values[KeyToken])
}

func TestLogout_ClearsEverything(t *testing.T) {
	store := newMemStore(map[string]string{KeyToken: "tok", KeyUser: userJSON(t, ana)})
	m := NewSessionManager(store, &stubAuth{})
	require.NoError(t, m.Restore())
	require.True(t, m.Snapshot().IsAuthenticated())

	m.Logout()

	assert.False(t, m.Snapshot().IsAuthenticated())
	assert.NotContains(t, store.values, KeyToken)
	assert.NotContains(t, store.values, KeyUser)
}

func TestUpdateUser_KeepsToken(t *testing.T) {
	store := newMemStore(map[string]string{KeyToken: "tok", KeyUser: userJSON(t, ana)})
	m := NewSessionManager(store, &stubAuth{})
	require.NoError(t, m.Restore())

	renamed := *ana
	renamed.Name = "Ana Maria"
	require.NoError(t, m.UpdateUser(&renamed))

	s := m.Snapshot()
	assert.Equal(t, "tok", s.Token)
	assert.Equal(t, "Ana Maria", s.User.Name)
	assert.Equal(t, "tok", store.values[KeyToken])
	assert.Contains(t, store.values[KeyUser], "Ana Maria")
}

func TestUpdateUser_RequiresSession(t *testing.T) {
	store := newMemStore(nil)
	m := NewSessionManager(store, &stubAuth{})
	require.NoError(t, m.Restore())

	assert.ErrorIs(t, m.UpdateUser(ana), ErrNotAuthenticated)
	assert.Empty(t, store.values)
}

func TestSubscribe_NotifiesUntilUnsubscribed(t *testing.T) {
	store := newMemStore(map[string]string{KeyToken: "tok", KeyUser: userJSON(t, ana)})
	m := NewSessionManager(store, &stubAuth{})

	var seen []bool
	unsubscribe := m.Subscribe(func(s State) { seen = append(seen, s.IsAuthenticated()) })

	require.NoError(t, m.Restore())
	m.Logout()
	unsubscribe()
	m.Logout()

	assert.Equal(t, []bool{true, false}, seen)
}
