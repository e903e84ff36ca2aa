package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrLoginFailed        = errors.New("login failed")
)

// Identity is display data for the signed-in user. It carries no authority.
type Identity struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Initials string `json:"initials"`
}

// Session gates navigation. The zero value is signed out.
type Session struct {
	Authenticated bool     `json:"authenticated"`
	Identity      Identity `json:"identity"`
}

// State is everything the console remembers for one browser.
type State struct {
	Session Session      `json:"session"`
	Sidebar SidebarState `json:"sidebar"`
}

type Credentials struct {
	Email    string
	Password string
}

// Validate only checks that both fields are present. The password is
// taken as typed; any non-empty value counts.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" || c.Password == "" {
		return ErrMissingCredentials
	}
	return nil
}

// Authenticator performs the login request. Implementations may block and
// must honour ctx cancellation.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (Identity, error)
}

// Gate applies login and logout to a State.
type Gate struct {
	auth Authenticator
}

func NewGate(auth Authenticator) *Gate {
	return &Gate{auth: auth}
}

// Login validates creds, calls the authenticator and marks the state signed in.
// On any error the state is left untouched.
func (g *Gate) Login(ctx context.Context, state *State, creds Credentials) (Route, error) {
	if err := creds.Validate(); err != nil {
		return Route{View: ViewLogin}, err
	}

	creds.Email = strings.TrimSpace(creds.Email)
	identity, err := g.auth.Authenticate(ctx, creds)
	if err != nil {
		return Route{View: ViewLogin}, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	state.Session = Session{Authenticated: true, Identity: identity}
	return Route{View: ViewDashboard}, nil
}

// Logout signs the state out. Sidebar state survives.
func (g *Gate) Logout(state *State) {
	state.Session = Session{}
}

// Render resolves path against the state's session.
func (g *Gate) Render(state State, path string) Route {
	return Resolve(path, state.Session.Authenticated)
}
