package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bookfinder/internal/app/directory"
	"bookfinder/internal/app/kv"
	"bookfinder/internal/pkg/auth/jwt"
)

func newUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts of the user directory",
	}
	cmd.AddCommand(newUsersRegisterCommand(), newUsersLoginCommand())
	return cmd
}

func newUsersRegisterCommand() *cobra.Command {
	var email, name string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd, "Password: ")
			if err != nil {
				return err
			}

			cfg, store, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			users := newDirectory(cfg.BcryptCost, cfg.StorageKeyPrefix, store)
			session, err := users.Register(cmd.Context(), directory.RegisterInput{Email: email, Name: name, Password: password})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), session)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newUsersLoginCommand() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Verify credentials and print a session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd, "Password: ")
			if err != nil {
				return err
			}

			cfg, store, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			users := newDirectory(cfg.BcryptCost, cfg.StorageKeyPrefix, store)
			session, err := users.Login(cmd.Context(), directory.Credentials{Email: email, Password: password})
			if err != nil {
				return err
			}

			token, err := jwt.IssueSessionToken(session.ID, session.Email, cfg.JWTSecret)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"token": token, "user": session})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// newDirectory builds a directory without simulated latency.
func newDirectory(bcryptCost int, keyPrefix string, store kv.Store) directory.Service {
	return directory.NewService(store, directory.Options{
		UsersKey:   kv.KeysFor(keyPrefix).Users,
		BcryptCost: bcryptCost,
	})
}

// readPassword prompts without echo on a terminal and reads one line otherwise.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		password, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(password), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
