package cli

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/thruflo/sortviz/internal/auth"
	"github.com/thruflo/sortviz/internal/config"
	"github.com/thruflo/sortviz/internal/server"
	"github.com/thruflo/sortviz/web"
)

var (
	serveHost        string
	servePort        int
	serveAssets      string
	serveSetPassword bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web visualizer",
	Long: `Serve the browser visualizer and its control API.

The server listens on 127.0.0.1:8375 by default. Binding to another address
exposes the controls to the network; set a password first with
--set-password so that clients must sign in.

Example:
  sortviz serve
  sortviz serve --port 9000
  sortviz serve --host 0.0.0.0 --set-password`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from config)")
	serveCmd.Flags().StringVar(&serveAssets, "assets", "", "serve the web client from this directory instead of the embedded copy")
	serveCmd.Flags().BoolVar(&serveSetPassword, "set-password", false, "prompt for a password and save its hash to the config before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serveHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if err := config.ValidateServer(&cfg.Server); err != nil {
		return err
	}

	logger, err := setupLogging(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if serveSetPassword {
		path, err := setPassword(cfg, auth.NewPrompter())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Password saved to %s\n", path)
	}

	a, err := newApp(cfg, logger, nil)
	if err != nil {
		return err
	}

	srv, err := server.NewServer(&server.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		PasswordHash: cfg.Server.PasswordHash,
		Controller:   a.ctrl,
		Mute:         a.mute,
		Assets:       web.Assets(serveAssets),
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	a.tones.Add(srv.Hub())

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	fmt.Fprintf(cmd.OutOrStdout(), "sortviz serving on http://%s\n", addr)
	if srv.AuthEnabled() {
		fmt.Fprintln(cmd.OutOrStdout(), "Password authentication is enabled.")
	}

	return serve(ctx, a, srv, cmd.OutOrStdout())
}

// serve runs the hub and the HTTP server until ctx is done or the server
// fails, then stops any run and shuts everything down.
func serve(ctx context.Context, a *app, srv *server.Server, out io.Writer) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Hub().Run(gctx)
	})
	g.Go(func() error {
		return srv.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		fmt.Fprintln(out, "\nShutting down...")

		a.ctrl.Stop()
		waitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.ctrl.Wait(waitCtx)

		return srv.Stop()
	})

	return g.Wait()
}

// setPassword prompts for a new password and saves its hash to the config.
func setPassword(cfg *config.Config, p *auth.Prompter) (string, error) {
	password, err := p.PromptAndConfirm()
	if err != nil {
		return "", err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	cfg.Server.PasswordHash = hash
	return saveConfig(cfg)
}
