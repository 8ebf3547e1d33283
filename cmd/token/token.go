// Package token implements the token command, which issues an access and
// refresh token pair for a user and records the refresh token so the
// realtime endpoint accepts it.
package token

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"

	"brainbuddy/focusws/cmd/shared"
	"brainbuddy/focusws/pkg/auth"
	"brainbuddy/focusws/pkg/config"
	"brainbuddy/focusws/pkg/format"
	"brainbuddy/focusws/pkg/log"
	"brainbuddy/focusws/pkg/realtime"
	"brainbuddy/focusws/pkg/store"

	"github.com/urfave/cli/v3"
)

// GetCommand returns the CLI command that issues tokens.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Issue an access/refresh token pair for a user",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger := log.New(os.Stderr, false)

			cfg, err := config.LoadRealtime()
			if err != nil {
				logger.ErrorMsg("Reading environment: %s\n", err)
				return fmt.Errorf("exiting")
			}
			if !cfg.Enabled() {
				logger.ErrorMsg("%sJWT_SECRET_KEY must be set to issue tokens\n", config.EnvPrefix)
				return fmt.Errorf("exiting")
			}
			if errs := config.Validate(cfg); len(errs) > 0 {
				logger.ErrorMsg("Configuration errors:\n")
				for _, err := range errs {
					logger.ErrorMsg(" - %s\n", err)
				}
				return fmt.Errorf("exiting")
			}

			target := format.WebSocketURL(
				cmd.Bool(shared.SSLFlag),
				cmd.String(shared.HostFlag),
				int(cmd.Int(shared.PortFlag)),
				realtime.Path,
				url.Values{"user_name": {cmd.String(shared.UserFlag)}},
			)

			return issue(ctx, os.Stdout, cfg, cmd.String(shared.UserFlag), target)
		},
		Flags: shared.GetTokenFlags(),
	}
}

// issue mints a pair for user, stores the refresh token and prints the two
// cookies followed by the URL to dial.
func issue(ctx context.Context, w io.Writer, cfg *config.Realtime, user, target string) error {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	pair, err := auth.NewIssuer(cfg).IssueAndRecord(ctx, user, st)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s=%s\n", cfg.AccessCookie, pair.Access)
	fmt.Fprintf(w, "%s=%s\n", cfg.RefreshCookie, pair.Refresh)
	fmt.Fprintln(w, target)
	return nil
}
