package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/loandesk/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) credentials() (string, []byte, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

// SignUp creates an account. It does not sign in.
func (a *App) SignUp(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.auth.SignUp(ctx, email, string(password))
	if err != nil {
		return err
	}
	a.printf("Account created for %s. Use 'login' to sign in.\n", u.Email)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	_, session, err := a.auth.SignIn(ctx, email, string(password))
	if errors.Is(err, common.ErrInvalidCredentials) {
		a.printf("Login unsuccessful: invalid email or password\n")
		return nil
	}
	if err != nil {
		return err
	}
	a.printf("Login successful, session valid until %s\n", session.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

// Logout ends every session on this store.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.SignOut(ctx); err != nil {
		return err
	}
	a.printf("Signed out\n")
	return nil
}

func (a *App) Session(ctx context.Context) error {
	s, err := a.auth.GetSession(ctx)
	if err != nil {
		return err
	}
	view := a.auth.View(ctx, s)
	if view == nil {
		a.printf("Not signed in\n")
		return nil
	}
	a.printf("Signed in as %s (session %s, expires %s)\n",
		view.User.Email, view.ID, view.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}
