package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/bookmate-auth/internal/client/api"
	"github.com/dmitrijs2005/bookmate-auth/internal/filex"
)

// ErrNotLoggedIn is returned when no session token has been stored.
var ErrNotLoggedIn = errors.New("not logged in, run 'bookmate login' first")

func (a *App) newRegisterCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account; a confirmation link is emailed to you",
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, password, err := a.credentials(cmd, email)
			if err != nil {
				return err
			}
			defer wipe(password)

			msg, err := a.api.Register(cmd.Context(), email, string(password))
			if err != nil {
				return err
			}
			cmd.Println(msg)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func (a *App) newConfirmCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "confirm",
		Short: "Confirm the email address of an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, err := a.email(cmd, email)
			if err != nil {
				return err
			}

			msg, err := a.api.ConfirmEmail(cmd.Context(), email)
			if err != nil {
				return err
			}
			cmd.Println(msg)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func (a *App) newLoginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session token for later commands",
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, password, err := a.credentials(cmd, email)
			if err != nil {
				return err
			}
			defer wipe(password)

			res, err := a.api.Login(cmd.Context(), email, string(password))
			if err != nil {
				return err
			}

			if err := filex.WriteSecret(a.config.TokenFile, []byte(res.Token)); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			cmd.Printf("Logged in as %s, session valid until %s\n", email, res.ExpiresAt.Local().Format(time.RFC1123))
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func (a *App) newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity of the stored session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := a.storedToken()
			if err != nil {
				return err
			}

			id, err := a.api.Me(cmd.Context(), token)
			if err != nil {
				if errors.Is(err, api.ErrUnauthorized) {
					return fmt.Errorf("session rejected (%v), log in again", err)
				}
				return err
			}

			cmd.Printf("%s (token %s, expires %s)\n", id.Subject, id.TokenID, id.ExpiresAt.Local().Format(time.RFC1123))
			return nil
		},
	}
}

func (a *App) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := os.Remove(a.config.TokenFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			cmd.Println("Logged out")
			return nil
		},
	}
}

// --- helpers below ---

func (a *App) email(cmd *cobra.Command, fromFlag string) (string, error) {
	if fromFlag != "" {
		return fromFlag, nil
	}
	return GetSimpleText(a.reader, "Enter email", cmd.OutOrStdout())
}

func (a *App) credentials(cmd *cobra.Command, fromFlag string) (string, []byte, error) {
	email, err := a.email(cmd, fromFlag)
	if err != nil {
		return "", nil, err
	}
	password, err := GetPassword(a.reader, cmd.OutOrStdout())
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

func (a *App) storedToken() (string, error) {
	raw, err := os.ReadFile(a.config.TokenFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotLoggedIn
		}
		return "", err
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", ErrNotLoggedIn
	}
	return token, nil
}
