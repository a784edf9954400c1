package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isLocked() bool

	Login(ctx context.Context) error
	Logout(ctx context.Context) error

	Unlock(ctx context.Context) error
	Forgot(ctx context.Context) error
	Back(ctx context.Context) error
	SendCode(ctx context.Context) error
	Answer(ctx context.Context) error
	ResetCode(ctx context.Context) error
	Retry(ctx context.Context) error

	SetPin(ctx context.Context) error
	SetPassword(ctx context.Context) error
	SetPattern(ctx context.Context) error
	SetBiometric(ctx context.Context) error
	Disable(ctx context.Context) error
	Questions(ctx context.Context) error

	AddLogin(ctx context.Context) error
	AddNote(ctx context.Context) error
	AddCard(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context) error
	Delete(ctx context.Context) error
	Sync(ctx context.Context) error

	Visibility(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the vaultgate CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Signed out:
//	  - help           — show available commands
//	  - login          — set the primary-auth access token
//	  - exit | quit    — leave the program
//
//	Locked:
//	  - unlock         — enter the challenge secret
//	  - retry          — re-run the biometric ceremony
//	  - forgot         — start the recovery flow
//	  - sendcode       — email a one-time reset code
//	  - answer         — answer a security question
//	  - resetcode      — enter the code and a new secret
//	  - back           — return to the challenge
//
//	Unlocked:
//	  - setpin | setpassword | setpattern | setbiometric
//	  - disable        — turn a method off
//	  - questions      — configure security questions
//	  - addlogin | addnote | addcard
//	  - (l)ist | show | delete | sync
//	  - visibility     — simulate the app regaining visibility
//	  - logout
//
// While locked only the unlock/recovery commands are dispatched; everything
// else is refused so the gate cannot be bypassed from the shell.
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("vg> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "help":
			printHelp(a)
			continue
		}

		if !a.isLoggedIn() {
			switch cmd {
			case "login":
				_ = a.Login(ctx)
			default:
				printlnFn("Sign in first:", cmd)
			}
			continue
		}

		if a.isLocked() {
			switch cmd {
			case "unlock":
				_ = a.Unlock(ctx)
			case "retry":
				_ = a.Retry(ctx)
			case "forgot":
				_ = a.Forgot(ctx)
			case "sendcode":
				_ = a.SendCode(ctx)
			case "answer":
				_ = a.Answer(ctx)
			case "resetcode":
				_ = a.ResetCode(ctx)
			case "back":
				_ = a.Back(ctx)
			case "logout":
				_ = a.Logout(ctx)
			default:
				printlnFn("Locked; unlock first:", cmd)
			}
			continue
		}

		switch cmd {
		case "setpin":
			_ = a.SetPin(ctx)
		case "setpassword":
			_ = a.SetPassword(ctx)
		case "setpattern":
			_ = a.SetPattern(ctx)
		case "setbiometric":
			_ = a.SetBiometric(ctx)
		case "disable":
			_ = a.Disable(ctx)
		case "questions":
			_ = a.Questions(ctx)
		case "addlogin":
			_ = a.AddLogin(ctx)
		case "addnote":
			_ = a.AddNote(ctx)
		case "addcard":
			_ = a.AddCard(ctx)
		case "l", "list":
			_ = a.List(ctx)
		case "show":
			_ = a.Show(ctx)
		case "delete":
			_ = a.Delete(ctx)
		case "sync":
			_ = a.Sync(ctx)
		case "visibility":
			_ = a.Visibility(ctx)
		case "logout":
			_ = a.Logout(ctx)
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func printHelp(a execIface) {
	switch {
	case !a.isLoggedIn():
		printlnFn("Available commands: login, exit")
	case a.isLocked():
		printlnFn("Available commands: unlock, retry, forgot, sendcode, answer, resetcode, back, logout, exit")
	default:
		printlnFn("Available commands: setpin, setpassword, setpattern, setbiometric, disable, questions, addlogin, addnote, addcard, (l)ist, show, delete, sync, visibility, logout, exit")
	}
}
