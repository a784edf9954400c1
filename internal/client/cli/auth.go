package cli

import (
	"context"
	"fmt"
	"log"
	"os"
)

// getSimpleText, getSecret and getPattern are indirections used to facilitate
// testing. They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getSecret = GetSecret
var getPattern = GetPattern

// Login sets the primary session from a pasted access token. Primary
// authentication happens elsewhere; this client only consumes its JWT. After
// the session is set the gate refreshes so a configured method locks
// immediately.
func (a *App) Login(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Paste access token", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.session.SetToken(token); err != nil {
		log.Printf("Login unsuccessfull: %s", err.Error())
		return err
	}

	a.gate.Refresh(ctx)
	fmt.Println("Success!")
	return nil
}

// Logout drops the primary session. The gate observes the change and unlocks:
// without a session there is nothing left to protect.
func (a *App) Logout(ctx context.Context) error {
	a.session.SignOut()
	fmt.Println("Signed out")
	return nil
}
