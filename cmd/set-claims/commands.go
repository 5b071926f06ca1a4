package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"claimsetter/backend/internal/authctx"
	"claimsetter/backend/internal/config"
	"claimsetter/backend/internal/domain/admin"
	"claimsetter/backend/internal/logging"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type connectFunc func(ctx context.Context, cfg config.Config) (*admin.Service, func(), error)

// failure is what a command returns when the operation fails; execute
// prints it to stderr as-is.
type failure struct {
	prefix string
	err    error
}

func (f *failure) Error() string { return f.prefix + ": " + f.err.Error() }
func (f *failure) Unwrap() error { return f.err }

// execute runs the command tree and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer, connect connectFunc) int {
	root := newRootCmd(stdout, stderr, connect)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer, connect connectFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "set-claims",
		Short:         "Manage the Firebase admin custom claim",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.String("credentials", "", "service account json file (default $GOOGLE_APPLICATION_CREDENTIALS or ./"+config.DefaultCredentialsFile+")")
	pf.String("project", "", "firebase project id")
	pf.String("audit", "", "firestore collection for audit records (empty disables)")
	pf.String("log-level", "", "debug, info, warn or error")

	root.AddCommand(
		newGrantCmd(stdout, stderr, connect),
		newRevokeCmd(stdout, stderr, connect),
		newShowCmd(stdout, stderr, connect),
		newListCmd(stdout, stderr, connect),
	)
	return root
}

func newGrantCmd(stdout, stderr io.Writer, connect connectFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grant [email]",
		Short: "Set admin: true on the user with this email",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			const prefix = "Error setting custom claim"
			cfg, err := prepare(cmd, args, stderr, true)
			if err != nil {
				return &failure{prefix, err}
			}
			svc, closeFn, err := connect(cmd.Context(), cfg)
			if err != nil {
				return &failure{prefix, err}
			}
			defer closeFn()

			g, err := svc.Grant(cliContext(cmd), admin.GrantRequest{Email: cfg.Email, Merge: cfg.MergeClaims})
			if err != nil {
				return &failure{prefix, err}
			}
			log.Debug().Str("uid", g.UID).Interface("claims", g.Claims).Msg("claims written")
			_, _ = fmt.Fprintln(stdout, "Custom claim 'admin: true' set successfully!")
			return nil
		},
	}
	cmd.Flags().String("email", "", "email of the user to promote (or $ADMIN_EMAIL)")
	cmd.Flags().Bool("merge", false, "keep the user's other custom claims instead of replacing them")
	return cmd
}

func newRevokeCmd(stdout, stderr io.Writer, connect connectFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revoke [email]",
		Short: "Remove the admin claim, keeping other claims",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			const prefix = "Error removing custom claim"
			cfg, err := prepare(cmd, args, stderr, true)
			if err != nil {
				return &failure{prefix, err}
			}
			svc, closeFn, err := connect(cmd.Context(), cfg)
			if err != nil {
				return &failure{prefix, err}
			}
			defer closeFn()

			if _, err := svc.Revoke(cliContext(cmd), cfg.Email); err != nil {
				return &failure{prefix, err}
			}
			_, _ = fmt.Fprintln(stdout, "Custom claim 'admin' removed successfully!")
			return nil
		},
	}
	cmd.Flags().String("email", "", "email of the user to demote (or $ADMIN_EMAIL)")
	return cmd
}

func newShowCmd(stdout, stderr io.Writer, connect connectFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [email]",
		Short: "Print a user's custom claims",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			const prefix = "Error reading custom claims"
			cfg, err := prepare(cmd, args, stderr, true)
			if err != nil {
				return &failure{prefix, err}
			}
			svc, closeFn, err := connect(cmd.Context(), cfg)
			if err != nil {
				return &failure{prefix, err}
			}
			defer closeFn()

			st, err := svc.Status(cmd.Context(), cfg.Email)
			if err != nil {
				return &failure{prefix, err}
			}
			claims, err := json.Marshal(st.Claims)
			if err != nil {
				return &failure{prefix, err}
			}
			_, _ = fmt.Fprintf(stdout, "uid: %s\nemail: %s\nadmin: %t\nclaims: %s\n", st.UID, st.Email, st.IsAdmin, claims)
			return nil
		},
	}
	cmd.Flags().String("email", "", "email of the user (or $ADMIN_EMAIL)")
	return cmd
}

func newListCmd(stdout, stderr io.Writer, connect connectFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users that carry an admin claim",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			const prefix = "Error listing admins"
			cfg, err := prepare(cmd, nil, stderr, false)
			if err != nil {
				return &failure{prefix, err}
			}
			svc, closeFn, err := connect(cmd.Context(), cfg)
			if err != nil {
				return &failure{prefix, err}
			}
			defer closeFn()

			admins, err := svc.ListAdmins(cmd.Context())
			if err != nil {
				return &failure{prefix, err}
			}
			for _, a := range admins {
				_, _ = fmt.Fprintf(stdout, "%s\t%s\n", a.UID, a.Email)
			}
			log.Debug().Int("count", len(admins)).Msg("admins listed")
			return nil
		},
	}
}

// prepare loads config from env and flags, applies the positional email
// and sets up logging. It never touches the network.
func prepare(cmd *cobra.Command, args []string, stderr io.Writer, needEmail bool) (config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return config.Config{}, err
	}
	if len(args) == 1 {
		cfg.Email = args[0]
	}
	logging.Setup(stderr, cfg.LogLevel)
	if needEmail {
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

func cliContext(cmd *cobra.Command) context.Context {
	return authctx.WithActor(cmd.Context(), "cli")
}
