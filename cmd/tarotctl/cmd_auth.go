package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yanqian/ai-tarot/internal/domain/account"
)

var (
	loginEmail    string
	loginPassword string

	registerName     string
	registerEmail    string
	registerPassword string
	registerConfirm  string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the token",
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE:  runWhoami,
}

func runLogin(cmd *cobra.Command, args []string) error {
	d, err := newDeps()
	if err != nil {
		return err
	}
	password := loginPassword
	if password == "" {
		password = os.Getenv("TAROT_PASSWORD")
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	status, err := d.accounts.Login(ctx, loginEmail, password)
	if err != nil {
		return err
	}
	name := loginEmail
	if status.User != nil && status.User.Name != "" {
		name = status.User.Name
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Signed in as "+name))
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	d, err := newDeps()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	message, err := d.accounts.Register(ctx, account.RegisterRequest{
		Name:            registerName,
		Email:           registerEmail,
		Password:        registerPassword,
		ConfirmPassword: registerConfirm,
	})
	if err != nil {
		return err
	}
	if message == "" {
		message = "Account created. Sign in with tarotctl login."
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(message))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	d, err := newDeps()
	if err != nil {
		return err
	}
	if err := d.accounts.Logout(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	d, err := newDeps()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	status, err := d.accounts.Restore(ctx)
	if err != nil {
		return err
	}
	if !status.Authenticated {
		fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
		return nil
	}
	user, err := d.accounts.Profile(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderProfile(user))
	return nil
}
