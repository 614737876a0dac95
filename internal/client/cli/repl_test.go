package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
	fail     map[string]error
}

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	return f.fail[name]
}

func (f *fakeExec) isLoggedIn() bool                    { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error  { return f.record("register") }
func (f *fakeExec) Verify(ctx context.Context) error    { f.loggedIn = true; return f.record("verify") }
func (f *fakeExec) Resend(ctx context.Context) error    { return f.record("resend") }
func (f *fakeExec) Login(ctx context.Context) error     { f.loggedIn = true; return f.record("login") }
func (f *fakeExec) Me(ctx context.Context) error        { return f.record("me") }
func (f *fakeExec) Dashboard(ctx context.Context) error { return f.record("dashboard") }
func (f *fakeExec) Logout(ctx context.Context) error    { f.loggedIn = false; return f.record("logout") }

func capturePrint(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	lines := capturePrint(t)

	input := strings.Join([]string{
		"help",
		"register",
		"resend",
		"verify",
		"",
		"help",
		"me",
		"dashboard",
		"logout",
		"login",
		"foobar",
		"exit",
		"me",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, rdr(input))

	assert.Equal(t, []string{"register", "resend", "verify", "me", "dashboard", "logout", "login"}, exec.calls)
	assert.Contains(t, *lines, "Available commands: register, verify, resend, login, exit")
	assert.Contains(t, *lines, "Available commands: me, dashboard, logout, exit")
	assert.Contains(t, *lines, "Unknown command: foobar")
	assert.Contains(t, *lines, "Bye!")
}

func TestRunREPL_PrintsErrorsAndStopsOnEOF(t *testing.T) {
	lines := capturePrint(t)

	exec := &fakeExec{fail: map[string]error{"login": errors.New("invalid email or password")}}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("login\nme"))

	assert.Equal(t, []string{"login", "me"}, exec.calls)
	assert.Contains(t, *lines, "Error: invalid email or password")
}
