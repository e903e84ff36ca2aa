package shell

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	calls int
	err   error
}

func (f *fakeAuth) Authenticate(_ context.Context, creds Credentials) (Identity, error) {
	f.calls++
	if f.err != nil {
		return Identity{}, f.err
	}
	return Identity{Email: creds.Email, Name: "A", Initials: "A"}, nil
}

func TestGate_LoginRequiresBothFields(t *testing.T) {
	cases := []Credentials{
		{Email: "", Password: "x"},
		{Email: "a@b.com", Password: ""},
		{Email: "   ", Password: "x"},
		{},
	}
	for _, creds := range cases {
		auth := &fakeAuth{}
		gate := NewGate(auth)
		state := State{Sidebar: SidebarState{ActiveGroup: GroupSettings}}

		route, err := gate.Login(context.Background(), &state, creds)
		assert.ErrorIs(t, err, ErrMissingCredentials)
		assert.Equal(t, ViewLogin, route.View)
		assert.False(t, state.Session.Authenticated)
		assert.Equal(t, GroupSettings, state.Sidebar.ActiveGroup)
		assert.Zero(t, auth.calls, "authenticator must not be called")
	}
}

func TestGate_LoginAcceptsBlankPassword(t *testing.T) {
	auth := &fakeAuth{}
	gate := NewGate(auth)
	var state State

	route, err := gate.Login(context.Background(), &state, Credentials{Email: "a@b.com", Password: " "})
	require.NoError(t, err)
	assert.Equal(t, ViewDashboard, route.View)
	assert.True(t, state.Session.Authenticated)
	assert.Equal(t, 1, auth.calls)
}

func TestGate_LoginSucceeds(t *testing.T) {
	auth := &fakeAuth{}
	gate := NewGate(auth)
	var state State

	route, err := gate.Login(context.Background(), &state, Credentials{Email: " a@b.com ", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, Route{View: ViewDashboard}, route)
	assert.True(t, state.Session.Authenticated)
	assert.Equal(t, "a@b.com", state.Session.Identity.Email)
	assert.Equal(t, 1, auth.calls)
}

func TestGate_LoginFailureLeavesStateUntouched(t *testing.T) {
	gate := NewGate(&fakeAuth{err: errors.New("timeout")})
	var state State

	_, err := gate.Login(context.Background(), &state, Credentials{Email: "a@b.com", Password: "x"})
	assert.ErrorIs(t, err, ErrLoginFailed)
	assert.False(t, state.Session.Authenticated)
	assert.Empty(t, state.Session.Identity.Email)
}

func TestGate_LogoutKeepsSidebar(t *testing.T) {
	gate := NewGate(&fakeAuth{})
	state := State{
		Session: Session{Authenticated: true, Identity: Identity{Email: "a@b.com"}},
		Sidebar: SidebarState{Collapsed: true, ActiveGroup: GroupReports},
	}

	gate.Logout(&state)
	assert.False(t, state.Session.Authenticated)
	assert.Empty(t, state.Session.Identity)
	assert.True(t, state.Sidebar.Collapsed)
	assert.Equal(t, GroupReports, state.Sidebar.ActiveGroup)

	gate.Logout(&state)
	assert.False(t, state.Session.Authenticated)
}

func TestGate_NavigationScenario(t *testing.T) {
	gate := NewGate(&fakeAuth{})
	var state State

	assert.Equal(t, Route{View: ViewLogin}, gate.Render(state, "/income"))

	route, err := gate.Login(context.Background(), &state, Credentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, ViewDashboard, route.View)

	assert.Equal(t, Route{View: ViewReports, Sub: ReportQuarterly}, gate.Render(state, "/reports/quarterly"))

	gate.Logout(&state)
	assert.Equal(t, Route{View: ViewLogin}, gate.Render(state, "/reports/quarterly"))
}
