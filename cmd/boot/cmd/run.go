package cmd

import (
	"fmt"
	"net/http"

	"github.com/GoCodeAlone/boot"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
)

// Supported --mode values.
const (
	ModeServer = "server"
	ModeNone   = "none"
)

// RunOptions are the flags of the run command.
type RunOptions struct {
	Bootstrap string
	Mode      string
	Host      string
	Port      int
	NoBanner  bool
}

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an application through its lifecycle",
		Long: `Run boots an application from a bootstrap file. In server mode it serves
/actuator/health and /metrics until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApplication(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Bootstrap, "bootstrap", "b", "", "bootstrap file (default ./bootstrap.toml)")
	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", ModeServer, "application mode: server or none")
	cmd.Flags().StringVar(&opts.Host, "host", "", "host to bind in server mode")
	cmd.Flags().IntVarP(&opts.Port, "port", "p", 0, "port to bind in server mode, overrides application.port")
	cmd.Flags().BoolVar(&opts.NoBanner, "no-banner", false, "do not print the startup banner")
	return cmd
}

// ModeFor maps a --mode value to an application mode.
func ModeFor(opts *RunOptions) (boot.ApplicationMode, error) {
	switch opts.Mode {
	case ModeServer, "":
		return boot.ServerMode{
			Host:   opts.Host,
			Port:   opts.Port,
			Routes: []func(chi.Router){infoRoute},
		}, nil
	case ModeNone:
		return boot.NoneMode{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", boot.ErrUnsupportedMode, opts.Mode)
	}
}

func infoRoute(r chi.Router) {
	r.Get("/actuator/info", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = fmt.Fprintln(w, PrintVersion())
	})
}

func runApplication(cmd *cobra.Command, opts *RunOptions) error {
	mode, err := ModeFor(opts)
	if err != nil {
		return err
	}

	app, err := boot.NewApplication(
		boot.WithMode(mode),
		boot.WithBootstrapFile(opts.Bootstrap),
		boot.WithBanner(!opts.NoBanner, cmd.OutOrStdout()),
	)
	if err != nil {
		return err
	}

	result, err := app.Run(cmd.Context())
	if err != nil {
		return err
	}
	if result.Failed() {
		return fmt.Errorf("application failed: %w", result.Err)
	}
	return nil
}
