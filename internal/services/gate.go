package services

import (
	"sync"

	"vacationRentalWebsite/internal/models"
)

// Phase is the coarse session state the gate decides on
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseUnauthenticated
	PhaseAuthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// PhaseOf maps a session snapshot to its phase
func PhaseOf(s State) Phase {
	switch {
	case s.IsLoading:
		return PhaseLoading
	case s.IsAuthenticated():
		return PhaseAuthenticated
	default:
		return PhaseUnauthenticated
	}
}

// Decision is what a protected view does for a given session state
type Decision int

const (
	DecisionLoading Decision = iota
	DecisionRedirectLogin
	DecisionRedirectHome
	DecisionRender
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionRedirectLogin:
		return "redirect-login"
	case DecisionRedirectHome:
		return "redirect-home"
	case DecisionRender:
		return "render"
	}
	return "unknown"
}

// Target is the redirect location of d, empty when d does not redirect
func (d Decision) Target() string {
	switch d {
	case DecisionRedirectLogin:
		return "/login"
	case DecisionRedirectHome:
		return "/"
	}
	return ""
}

type gateKey struct {
	phase  Phase
	roleOK bool
}

// gateTable is the full transition table of the access gate. roleOK is true
// when no role is required or the user's role matches.
var gateTable = map[gateKey]Decision{
	{PhaseLoading, false}:         DecisionLoading,
	{PhaseLoading, true}:          DecisionLoading,
	{PhaseUnauthenticated, false}: DecisionRedirectLogin,
	{PhaseUnauthenticated, true}:  DecisionRedirectLogin,
	{PhaseAuthenticated, false}:   DecisionRedirectHome,
	{PhaseAuthenticated, true}:    DecisionRender,
}

// Evaluate looks up the gate decision for s with an optional required role
func Evaluate(s State, required models.Role) Decision {
	roleOK := required == "" || s.Role() == required
	return gateTable[gateKey{PhaseOf(s), roleOK}]
}

// Guard keeps a gate decision current for one protected view. It re-runs the
// table whenever the session changes or the required role is replaced.
type Guard struct {
	mu          sync.Mutex
	session     *SessionManager
	required    models.Role
	decision    Decision
	onChange    func(Decision)
	unsubscribe func()
}

// NewGuard evaluates immediately and then on every session change. onChange,
// if set, runs each time the decision differs from the previous one.
func NewGuard(session *SessionManager, required models.Role, onChange func(Decision)) *Guard {
	g := &Guard{
		session:  session,
		required: required,
		onChange: onChange,
	}
	g.decision = Evaluate(session.Snapshot(), required)
	g.unsubscribe = session.Subscribe(func(s State) {
		g.reevaluate(s)
	})
	return g
}

func (g *Guard) reevaluate(s State) {
	g.mu.Lock()
	next := Evaluate(s, g.required)
	changed := next != g.decision
	g.decision = next
	cb := g.onChange
	g.mu.Unlock()

	if changed && cb != nil {
		cb(next)
	}
}

// Decision returns the latest decision
func (g *Guard) Decision() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.decision
}

// SetRequiredRole changes the role the view demands and re-evaluates
func (g *Guard) SetRequiredRole(role models.Role) {
	g.mu.Lock()
	g.required = role
	g.mu.Unlock()
	g.reevaluate(g.session.Snapshot())
}

// Close stops following the session
func (g *Guard) Close() {
	if g.unsubscribe != nil {
		g.unsubscribe()
	}
}
