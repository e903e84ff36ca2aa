package services

import (
	"context"
	"strings"
	"time"
	"unicode"

	"parishfinance/internal/shell"
)

// StubAuthenticator accepts any credentials after Delay. It stands in for
// a real identity provider; the console performs no credential checks.
type StubAuthenticator struct {
	Delay time.Duration
}

func (a StubAuthenticator) Authenticate(ctx context.Context, creds shell.Credentials) (shell.Identity, error) {
	if a.Delay > 0 {
		timer := time.NewTimer(a.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return shell.Identity{}, ctx.Err()
		case <-timer.C:
		}
	}
	return IdentityFromEmail(creds.Email), nil
}

// IdentityFromEmail derives display data from an address:
// "jane.doe@parish.org" becomes "Jane Doe" with initials "JD".
func IdentityFromEmail(email string) shell.Identity {
	email = strings.TrimSpace(email)
	local, _, _ := strings.Cut(email, "@")

	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+' || unicode.IsDigit(r)
	})
	if len(parts) == 0 {
		return shell.Identity{Email: email, Name: email, Initials: "?"}
	}

	names := make([]string, 0, len(parts))
	var initials strings.Builder
	for _, p := range parts {
		runes := []rune(strings.ToLower(p))
		runes[0] = unicode.ToUpper(runes[0])
		names = append(names, string(runes))
		if initials.Len() < 2 {
			initials.WriteRune(runes[0])
		}
	}

	return shell.Identity{
		Email:    email,
		Name:     strings.Join(names, " "),
		Initials: initials.String(),
	}
}
