package cli

import (
	"context"
	"fmt"

	"github.com/handiism/vinyl-vault/internal/model"
)

func runSignIn(ctx context.Context, e *env, args []string) error {
	return authenticate(ctx, e, "signin", args, false)
}

func runSignUp(ctx context.Context, e *env, args []string) error {
	return authenticate(ctx, e, "signup", args, true)
}

func authenticate(ctx context.Context, e *env, name string, args []string, register bool) error {
	fs := newFlagSet(e, name, "-u <username> [-p <password>]")
	username := fs.String("u", "", "Username")
	password := fs.String("p", "", "Password (read from stdin when omitted)")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	if *username == "" {
		return usagef("%s needs -u <username>", name)
	}

	if *password == "" {
		fmt.Fprint(e.errOut, "Password: ")
		line, err := e.readLine()
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		*password = line
	}

	creds := model.Credentials{Username: *username, Password: *password}
	var err error
	if register {
		err = e.app.Session.SignUp(ctx, creds)
	} else {
		err = e.app.Session.SignIn(ctx, creds)
	}
	if err != nil {
		return err
	}

	if register {
		e.printf("✅ Welcome, %s! Your account is ready.\n", *username)
	} else {
		e.printf("✅ Signed in as %s\n", *username)
	}
	return nil
}

func runSignOut(ctx context.Context, e *env, _ []string) error {
	e.app.SignOut(ctx)
	e.printf("Signed out.\n")
	return nil
}

func runWhoAmI(_ context.Context, e *env, _ []string) error {
	user, ok := e.app.Session.CurrentUser()
	if !ok {
		return errNotSignedIn
	}
	e.printf("%s (%s)\n", model.UserRef{ID: user.ID, Username: user.Username}.DisplayName(), user.ID)
	return nil
}
