package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/verikeep/internal/client/client"
	"github.com/dmitrijs2005/verikeep/internal/client/config"
)

// apiClient is the subset of *client.Client used by the commands.
type apiClient interface {
	Register(ctx context.Context, name, email, password string) (*client.CodeSent, error)
	VerifyEmail(ctx context.Context, email, code string) (*client.Account, error)
	ResendCode(ctx context.Context, email string) (*client.CodeSent, error)
	Login(ctx context.Context, email, password string) (*client.Account, error)
	Me(ctx context.Context) (*client.Account, error)
	Dashboard(ctx context.Context) (*client.Dashboard, error)
	Token() string
	Logout()
}

type App struct {
	config *config.Config
	api    apiClient
	reader *bufio.Reader
	out    io.Writer

	// email of the last register/login, offered as the default for verify
	// and resend
	email string
}

func NewApp(c *config.Config) (*App, error) {
	return &App{
		config: c,
		api:    client.New(c.ServerURL, c.RequestTimeout),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.api.Token() != ""
}

func (a *App) status() string {
	if a.isLoggedIn() && a.email != "" {
		return "(" + a.email + ")"
	}
	return ""
}

// Run starts the REPL on standard input.
func (a *App) Run(ctx context.Context) {
	printlnFn("Welcome to verikeep CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
}
