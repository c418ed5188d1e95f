// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/terradesk/terradesk/internal/api"
	"github.com/terradesk/terradesk/internal/session"
)

var loginUsername string

// loginCmd signs in and persists the session token, so scripted commands
// (export, or a later console launch) run without re-prompting.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, cleanup, err := buildDeps()
		if err != nil {
			return err
		}
		defer cleanup()

		username := loginUsername
		if username == "" {
			fmt.Print("Username: ")
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("read username: %w", err)
			}
			username = strings.TrimSpace(line)
		}
		if username == "" {
			return fmt.Errorf("no username given")
		}

		var password string
		if term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			password = string(bytePassword)
		} else {
			// Piped stdin: read the password from the next line.
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()
		res, err := deps.Client.Login(ctx, username, password)
		if err != nil {
			if api.IsUnauthorized(err) {
				return fmt.Errorf("invalid username or password")
			}
			return err
		}

		deps.Guard.Login(res.Token, res.User)
		log.Infof("Signed in as %s (%s)", res.User.Username, res.User.Role)
		return nil
	},
}

// logoutCmd drops the stored session token.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the stored session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, cleanup, err := buildDeps()
		if err != nil {
			return err
		}
		defer cleanup()

		if deps.Guard.Token() == "" {
			log.Info("No stored session.")
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		if err := deps.Client.Logout(ctx); err != nil {
			// Server-side revocation is best-effort; the local token is
			// cleared either way.
			log.Debugf("logout request failed: %v", err)
		}
		deps.Guard.Logout(session.ReasonManual)
		log.Info("Signed out.")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username to sign in with")
}
