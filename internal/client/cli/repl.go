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
	isLoggedIn(ctx context.Context) bool
	SignUp(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Session(ctx context.Context) error
	Apply(ctx context.Context) error
	Calc(ctx context.Context) error
	List(ctx context.Context, status string) error
	Search(ctx context.Context, query string) error
	Show(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) error
	Emails(ctx context.Context) error
}

// reviewerCommands need a signed-in session.
var reviewerCommands = map[string]bool{
	"list": true, "l": true, "search": true, "show": true, "status": true,
	"delete": true, "stats": true, "emails": true,
}

// runREPL reads commands from scanner until EOF, "exit" or "quit".
//
//	Anyone:
//	  help, signup, login, session, apply, calc, exit | quit
//
//	Signed in:
//	  list [status], search <text>, show <id>, status <id> <status>,
//	  delete <id>, stats, emails, logout
//
// Command errors are reported and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("loandesk %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if reviewerCommands[cmd] && !a.isLoggedIn(ctx) {
			printlnFn("Please login first")
			continue
		}

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				printlnFn("Available commands: (l)ist [status], search <text>, show <id>, status <id> <pending|approved|rejected>, delete <id>, stats, emails, apply, calc, session, logout, exit")
			} else {
				printlnFn("Available commands: signup, login, session, apply, calc, exit")
			}

		case "signup":
			err = a.SignUp(ctx)
		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "session":
			err = a.Session(ctx)
		case "apply":
			err = a.Apply(ctx)
		case "calc":
			err = a.Calc(ctx)

		case "l", "list":
			status := ""
			if len(args) > 0 {
				status = args[0]
			}
			err = a.List(ctx, status)

		case "search":
			if len(args) == 0 {
				printlnFn("Usage: search <text>")
				continue
			}
			err = a.Search(ctx, strings.Join(args, " "))

		case "show":
			if len(args) != 1 {
				printlnFn("Usage: show <id>")
				continue
			}
			err = a.Show(ctx, args[0])

		case "status":
			if len(args) != 2 {
				printlnFn("Usage: status <id> <pending|approved|rejected>")
				continue
			}
			err = a.SetStatus(ctx, args[0], args[1])

		case "delete":
			if len(args) != 1 {
				printlnFn("Usage: delete <id>")
				continue
			}
			err = a.Delete(ctx, args[0])

		case "stats":
			err = a.Stats(ctx)
		case "emails":
			err = a.Emails(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
