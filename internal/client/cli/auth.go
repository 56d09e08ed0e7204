package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nkiryanov/streamcat/internal/client/api"
	"github.com/nkiryanov/streamcat/internal/client/models"
	"github.com/nkiryanov/streamcat/internal/client/provider"
	"github.com/nkiryanov/streamcat/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and a remember-me choice and runs the login
// through the provider. Classified failures are reported to the user; the
// screen (REPL) stays where it is.
func (a *App) Login(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Enter username or email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	remember, err := getSimpleText(a.reader, "Stay signed in? (y/n)", os.Stdout)
	if err != nil {
		return err
	}
	rememberMe := strings.EqualFold(remember, "y") || strings.EqualFold(remember, "yes")

	creds := models.Credentials{Identifier: identifier, Password: string(password)}
	if err := a.provider.Login(ctx, creds, rememberMe); err != nil {
		fmt.Println(loginFailureMessage(err))
		return err
	}

	fmt.Println("Welcome back,", a.provider.State().User.FirstName)
	return nil
}

// Register prompts for account details and creates the account. A successful
// registration does not log the user in.
func (a *App) Register(ctx context.Context) error {
	firstName, err := getSimpleText(a.reader, "First name", os.Stdout)
	if err != nil {
		return err
	}
	lastName, err := getSimpleText(a.reader, "Last name", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	reg := models.Registration{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  string(password),
	}
	if _, err := a.provider.Register(ctx, reg); err != nil {
		fmt.Println("Registration failed:", err)
		return err
	}

	fmt.Println("Account created. You can log in now.")
	return nil
}

// Logout logs out; it only ever fails when a logout is already in flight.
func (a *App) Logout(ctx context.Context) error {
	if err := a.provider.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

// WhoAmI prints the cached profile of the current session.
func (a *App) WhoAmI(ctx context.Context) error {
	st := a.provider.State()
	if st.Status != provider.StatusAuthenticated {
		fmt.Println("Not logged in.")
		return nil
	}
	u := st.User
	fmt.Printf("%s %s <%s> (%s, role %s)\n", u.FirstName, u.LastName, u.Email, u.Username, u.Role)
	if a.auth.IsAdmin(ctx) {
		fmt.Printf("Admin access, level %d\n", a.auth.AdminLevel(ctx))
	}
	return nil
}

// ChangePassword prompts for the current and new passwords.
func (a *App) ChangePassword(ctx context.Context) error {
	fmt.Println("Current password:")
	current, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)

	fmt.Println("New password:")
	next, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(next)

	if err := a.auth.ChangePassword(ctx, string(current), string(next)); err != nil {
		fmt.Println("Password change failed:", err)
		return err
	}
	fmt.Println("Password changed.")
	return nil
}

// UpdateEmail prompts for the new email and the current password.
func (a *App) UpdateEmail(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "New email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.UpdateEmail(ctx, email, string(password)); err != nil {
		fmt.Println("Email update failed:", err)
		return err
	}
	fmt.Println("Email updated.")
	return nil
}

// Status prints the published session state.
func (a *App) Status(ctx context.Context) error {
	st := a.provider.State()
	if st.User != nil {
		fmt.Printf("%s as %s\n", st.Status, st.User.Username)
	} else {
		fmt.Println(st.Status)
	}
	return nil
}

func loginFailureMessage(err error) string {
	switch {
	case errors.Is(err, provider.ErrOperationInFlight):
		return "A login is already in progress."
	case errors.Is(err, api.ErrInvalidCredentials):
		return "Login failed: invalid username or password."
	case errors.Is(err, api.ErrAccountBlocked):
		return "Login failed: this account is blocked."
	case errors.Is(err, api.ErrValidation):
		return "Login failed: " + err.Error()
	default:
		return "Login failed: server unavailable, try again later."
	}
}
