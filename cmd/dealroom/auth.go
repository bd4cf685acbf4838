package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/dealroom-client/internal/domain"
	"github.com/spec-kit/dealroom-client/pkg/util"
)

func newRegisterCmd() *cobra.Command {
	var username, password, role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a buyer or seller account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			creds, err := resolveCredentials(username, password)
			if err != nil {
				return err
			}
			accountRole := domain.Role(strings.ToLower(role))
			if !accountRole.Valid() {
				return util.NewValidationError("role must be buyer or seller", nil)
			}

			if err := a.auth.Register(cmd.Context(), creds, accountRole); err != nil {
				return err
			}
			fmt.Println("Registered. Run `dealroom login` to sign in.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleBuyer), "account type: buyer or seller")
	return cmd
}

func newLoginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and cache the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			creds, err := resolveCredentials(username, password)
			if err != nil {
				return err
			}

			sess, err := a.sessions.Login(cmd.Context(), creds)
			if err != nil {
				return err
			}
			// the deals list is where a fresh login lands
			fmt.Printf("Logged in as %s (%s). Run `dealroom deals list` to browse deals.\n",
				sess.Subject, sess.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the cached session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			a.sessions.Logout(cmd.Context())
			fmt.Println("Logged out. Run `dealroom login` to sign in.")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the cached session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			sess, ok := a.sessions.Current()
			if !ok {
				fmt.Println("Not logged in.")
				return nil
			}
			fmt.Printf("%s (%s), session cached %s\n",
				sess.Subject, sess.Role, sess.DecodedAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}

func resolveCredentials(username, password string) (domain.Credentials, error) {
	reader := bufio.NewReader(os.Stdin)
	if username == "" {
		fmt.Print("Username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return domain.Credentials{}, fmt.Errorf("read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	if password == "" {
		fmt.Print("Password: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return domain.Credentials{}, fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimSpace(line)
	}
	if username == "" || password == "" {
		return domain.Credentials{}, util.NewValidationError("username and password are required", nil)
	}
	return domain.Credentials{Username: username, Password: password}, nil
}
