package cli

import (
	"bufio"
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/bookmate-auth/internal/client/api"
	"github.com/dmitrijs2005/bookmate-auth/internal/client/config"
)

// APIClient is the subset of the HTTP API the commands use.
type APIClient interface {
	Register(ctx context.Context, email, password string) (string, error)
	ConfirmEmail(ctx context.Context, email string) (string, error)
	Login(ctx context.Context, email, password string) (*api.LoginResult, error)
	Me(ctx context.Context, token string) (*api.Identity, error)
}

// newAPIClient is a seam so tests can swap the HTTP client.
var newAPIClient = func(cfg *config.Config) APIClient {
	return api.NewClient(cfg.ServerURL, cfg.RequestTimeout)
}

// App carries state shared by all commands of one invocation.
type App struct {
	config *config.Config
	api    APIClient
	reader *bufio.Reader

	configFile string
	serverURL  string
	timeout    time.Duration
	tokenFile  string
}

// NewRootCmd builds the bookmate command tree.
func NewRootCmd() *cobra.Command {
	a := &App{}

	cmd := &cobra.Command{
		Use:           "bookmate",
		Short:         "bookmate account client",
		Long:          `Register an account, confirm its email and log in against the bookmate auth server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "path to JSON config file")
	cmd.PersistentFlags().StringVarP(&a.serverURL, "server", "s", "", "auth server base URL")
	cmd.PersistentFlags().DurationVar(&a.timeout, "timeout", 0, "request timeout")
	cmd.PersistentFlags().StringVar(&a.tokenFile, "token-file", "", "where the session token is kept")

	cmd.AddCommand(
		a.newRegisterCmd(),
		a.newConfirmCmd(),
		a.newLoginCmd(),
		a.newWhoamiCmd(),
		a.newLogoutCmd(),
	)
	return cmd
}

// setup loads config and lets flags given on the command line win.
func (a *App) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.ServerURL = a.serverURL
	}
	if flags.Changed("timeout") {
		cfg.RequestTimeout = a.timeout
	}
	if flags.Changed("token-file") {
		cfg.TokenFile = a.tokenFile
	}

	a.config = cfg
	a.api = newAPIClient(cfg)
	a.reader = bufio.NewReader(cmd.InOrStdin())
	return nil
}
