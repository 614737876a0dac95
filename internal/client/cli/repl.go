package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Verify(ctx context.Context) error
	Resend(ctx context.Context) error
	Login(ctx context.Context) error
	Me(ctx context.Context) error
	Dashboard(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads commands line by line and dispatches them to a until EOF or
// "exit"/"quit". Command errors are printed and the loop continues. Commands
// prompt on the same reader, so it must not be wrapped in another buffer.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("vk%s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		var cmdErr error
		switch cmd := parts[0]; cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: me, dashboard, logout, exit")
			} else {
				printlnFn("Available commands: register, verify, resend, login, exit")
			}
		case "register":
			cmdErr = a.Register(ctx)
		case "verify":
			cmdErr = a.Verify(ctx)
		case "resend":
			cmdErr = a.Resend(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "me":
			cmdErr = a.Me(ctx)
		case "dashboard":
			cmdErr = a.Dashboard(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
	}
}
