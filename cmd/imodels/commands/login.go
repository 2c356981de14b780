package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fivetwenty-io/imodels-client/internal/auth"
	"github.com/fivetwenty-io/imodels-client/internal/constants"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an access token",
		Long: `Store an access token for the iModels API.

The token is read from --token or prompted for without echo. JWT tokens are
checked for expiry before they are stored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Access token: ")

				byteToken, err := term.ReadPassword(int(os.Stdin.Fd()))
				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}

				_, _ = fmt.Fprintln(cmd.ErrOrStderr())

				token = string(byteToken)
			}

			return storeToken(cmd, viper.GetString("api"), token)
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "access token to store")

	return cmd
}

// storeToken validates and persists token.
func storeToken(cmd *cobra.Command, api, token string) error {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return constants.ErrNotAuthenticated
	}

	expiresAt, err := auth.TokenExpiry(token)
	if err != nil && !errors.Is(err, constants.ErrInvalidJWTFormat) && !errors.Is(err, constants.ErrNoExpirationClaim) {
		return fmt.Errorf("reading token: %w", err)
	}

	if !expiresAt.IsZero() && !expiresAt.After(time.Now()) {
		return constants.ErrTokenExpired
	}

	err = NewConfigPersister().UpdateToken(api, token, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	if expiresAt.IsZero() {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Token stored")
	} else {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Token stored, expires at %s\n", formatTime(expiresAt))
	}

	return nil
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored access token",
		Long:  "Remove the access token stored by login",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := NewConfigPersister().ClearToken()
			if err != nil {
				return fmt.Errorf("failed to clear token: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")

			return nil
		},
	}
}
