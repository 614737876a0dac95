package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/verikeep/internal/client/client"
	"github.com/dmitrijs2005/verikeep/internal/common"
)

// getSimpleText and getPassword are swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.api.Register(ctx, name, email, string(password))
	if err != nil {
		return err
	}

	a.email = res.Email
	a.reportCode(res)
	return nil
}

func (a *App) Verify(ctx context.Context) error {
	email, err := a.askEmail()
	if err != nil {
		return err
	}
	code, err := getSimpleText(a.reader, "Enter verification code", a.out)
	if err != nil {
		return err
	}

	acc, err := a.api.VerifyEmail(ctx, email, code)
	if err != nil {
		return err
	}

	a.email = acc.Email
	fmt.Fprintf(a.out, "Email verified. Logged in as %s.\n", acc.Email)
	return nil
}

func (a *App) Resend(ctx context.Context) error {
	email, err := a.askEmail()
	if err != nil {
		return err
	}

	res, err := a.api.ResendCode(ctx, email)
	if err != nil {
		return err
	}
	a.reportCode(res)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	acc, err := a.api.Login(ctx, email, string(password))
	if err != nil {
		return err
	}

	a.email = acc.Email
	fmt.Fprintf(a.out, "Welcome back, %s!\n", acc.Name)
	return nil
}

func (a *App) Me(ctx context.Context) error {
	acc, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	printAccount(a, acc)
	return nil
}

func (a *App) Dashboard(ctx context.Context) error {
	d, err := a.api.Dashboard(ctx)
	if err != nil {
		return err
	}
	printAccount(a, &d.Account)
	fmt.Fprintf(a.out, "Accounts: %d total, %d verified\n", d.Stats.TotalAccounts, d.Stats.VerifiedAccounts)
	return nil
}

func (a *App) Logout(_ context.Context) error {
	a.api.Logout()
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// askEmail prompts for an email, defaulting to the last one used.
func (a *App) askEmail() (string, error) {
	prompt := "Enter email"
	if a.email != "" {
		prompt = fmt.Sprintf("Enter email [%s]", a.email)
	}
	email, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	if email == "" {
		email = a.email
	}
	return email, nil
}

func (a *App) reportCode(res *client.CodeSent) {
	if res.EmailSent {
		fmt.Fprintf(a.out, "Verification code sent to %s. Run 'verify' to continue.\n", res.Email)
		return
	}
	fmt.Fprintf(a.out, "Account pending for %s, but the email could not be sent. Try 'resend'.\n", res.Email)
}

func printAccount(a *App, acc *client.Account) {
	fmt.Fprintf(a.out, "%s <%s>\n  id: %s\n  role: %s\n  status: %s\n", acc.Name, acc.Email, acc.ID, acc.Role, acc.Status)
	if acc.LastLogin != nil {
		fmt.Fprintf(a.out, "  last login: %s\n", acc.LastLogin.Local().Format("2006-01-02 15:04:05"))
	}
}
