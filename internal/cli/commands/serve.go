package commands

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/runlens/internal/ui"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port      int
	NoBrowser bool
	Watch     bool
	Dev       bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"ui"},
		Short:   "Start the run report web UI",
		Long: `Start a local web server for browsing run reports.

The UI provides:
- Run list with the project notes
- Interactive run reports (trees, tables, charts, files, step players)
- Live updates while runs are still logging
- JSON endpoints for remote clients (/runs, /data/<run>)`,
		Example: `  # Start UI on default port
  runlens serve

  # Start on custom port
  runlens serve --port 3000

  # Start without auto-opening browser
  runlens serve --no-browser`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Watch the storage directory for new rows")
	cmd.Flags().BoolVar(&opts.Dev, "dev", false, "Enable hot reload endpoints")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if cc.Store == nil {
		return fmt.Errorf("serve needs a local storage directory; unset fetch.origin")
	}

	// Get UI config with defaults
	uiCfg := cc.Cfg.GetUIConfig()

	// CLI flags override config file
	port := uiCfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}

	autoOpen := uiCfg.AutoOpen
	if opts.NoBrowser {
		autoOpen = false
	}

	watch := uiCfg.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}

	server := ui.NewServer(ui.Config{
		Source:        cc.Source,
		Store:         cc.Store,
		Port:          port,
		Watch:         watch,
		Dev:           opts.Dev,
		SessionSecret: sessionSecret(uiCfg.SessionSecret),
		ReportTTL:     uiCfg.ReportTTL,
		PageSize:      uiCfg.PageSize,
		Logger:        cc.Logger,
	})

	// Open browser if configured
	if autoOpen {
		url := fmt.Sprintf("http://localhost:%d", port)
		go openBrowser(url)
	}

	_, _ = fmt.Fprintf(cc.Out, "Serving %s on http://localhost:%d\n", cc.Cfg.StorageDir, port)
	_, _ = fmt.Fprintln(cc.Out, "Press Ctrl+C to stop")

	return server.Serve(cmd.Context())
}

// sessionSecret returns the configured secret, or a random one so viewer
// cookies are only valid until restart.
func sessionSecret(configured string) string {
	if configured != "" {
		return configured
	}
	return uuid.NewString() + uuid.NewString()
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
