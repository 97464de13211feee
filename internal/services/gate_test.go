package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vacationRentalWebsite/internal/models"
)

func TestEvaluate_Table(t *testing.T) {
	admin := &models.User{ID: "a1", Email: "root@example.com", Role: models.RoleAdmin}

	tests := []struct {
		name     string
		state    State
		required models.Role
		want     Decision
	}{
		{"loading, no role", State{IsLoading: true}, "", DecisionLoading},
		{"loading, admin role", State{IsLoading: true}, models.RoleAdmin, DecisionLoading},
		{"signed out", State{}, "", DecisionRedirectLogin},
		{"signed out, admin role", State{}, models.RoleAdmin, DecisionRedirectLogin},
		{"user, no role", State{User: ana, Token: "t"}, "", DecisionRender},
		{"user, admin role", State{User: ana, Token: "t"}, models.RoleAdmin, DecisionRedirectHome},
		{"user, user role", State{User: ana, Token: "t"}, models.RoleUser, DecisionRender},
		{"admin, admin role", State{User: admin, Token: "t"}, models.RoleAdmin, DecisionRender},
		{"admin, user role", State{User: admin, Token: "t"}, models.RoleUser, DecisionRedirectHome},
		{"user without token", State{User: ana}, "", DecisionRedirectLogin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.state, tt.required))
		})
	}
}

func TestDecision_Target(t *testing.T) {
	assert.Equal(t, "/login", DecisionRedirectLogin.Target())
	assert.Equal(t, "/", DecisionRedirectHome.Target())
	assert.Empty(t, DecisionRender.Target())
	assert.Empty(t, DecisionLoading.Target())
}

func TestGuard_NoDecisionUntilRestored(t *testing.T) {
	store := newMemStore(map[string]string{KeyToken: "tok", KeyUser: userJSON(t, ana)})
	m := NewSessionManager(store, &stubAuth{})

	var changes []Decision
	g := NewGuard(m, "", func(d Decision) { changes = append(changes, d) })
	defer g.Close()

	assert.Equal(t, DecisionLoading, g.Decision())
	assert.Empty(t, changes)

	require.NoError(t, m.Restore())
	assert.Equal(t, DecisionRender, g.Decision())
	assert.Equal(t, []Decision{DecisionRender}, changes)
}

func TestGuard_LogoutRedirectsToLogin(t *testing.T) {
	store := newMemStore(map[string]string{KeyToken: "tok", KeyUser: userJSON(t, ana)})
	m := NewSessionManager(store, &stubAuth{})
	require.NoError(t, m.Restore())

	var last Decision
	g := NewGuard(m, "", func(d Decision) { last = d })
	defer g.Close()
	require.Equal(t, DecisionRender, g.Decision())

	m.Logout()

	assert.Equal(t, DecisionRedirectLogin, g.Decision())
	assert.Equal(t, DecisionRedirectLogin, last)
}

func TestGuard_AdminViewWithUserRoleGoesHome(t *testing.T) {
	store := newMemStore(map[string]string{KeyToken: "tok", KeyUser: userJSON(t, ana)})
	m := NewSessionManager(store, &stubAuth{})
	require.NoError(t, m.Restore())

	g := NewGuard(m, models.RoleAdmin, nil)
	defer g.Close()

	assert.Equal(t, DecisionRedirectHome, g.Decision())
	assert.Equal(t, "/", g.Decision().Target())
}

func TestGuard_RoleChangeReevaluates(t *testing.T) {
	store := newMemStore(map[string]string{KeyToken: "tok", KeyUser: userJSON(t, ana)})
	m := NewSessionManager(store, &stubAuth{})
	require.NoError(t, m.Restore())

	g := NewGuard(m, "", nil)
	defer g.Close()
	require.Equal(t, DecisionRender, g.Decision())

	g.SetRequiredRole(models.RoleAdmin)
	assert.Equal(t, DecisionRedirectHome, g.Decision())
}

func TestGuard_CloseStopsFollowing(t *testing.T) {
	store := newMemStore(map[string]string{KeyToken: "tok", KeyUser: userJSON(t, ana)})
	m := NewSessionManager(store, &stubAuth{})
	require.NoError(t, m.Restore())

	g := NewGuard(m, "", nil)
	g.Close()
	m.Logout()

	assert.Equal(t, DecisionRender, g.Decision())
}
