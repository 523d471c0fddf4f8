package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"time"

	"gigtrack-cli/internal/web"

	"github.com/spf13/cobra"
)

const shutdownGrace = 5 * time.Second

func newWebCmd(app *App) *cobra.Command {
	var (
		addr       string
		openWindow bool
	)

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the project tracker in a browser",
		Long: strings.TrimSpace(`
Start a local HTTP server with the project table, the add/edit form, search
and CSV export. Live search needs JavaScript; everything else is plain forms.

Stop it with Ctrl+C.
`),
		Example: strings.TrimSpace(`
gigtrack web
gigtrack web --addr :8080 --open=false
gigtrack --backend sqlite web
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bind := strings.TrimSpace(addr)
			if bind == "" {
				return writeErr(cmd, errors.New("web: --addr is empty"))
			}

			ctrl, closeFn, err := loadController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()

			srv, err := web.NewServer(web.ServerConfig{Controller: ctrl, Logger: app.logger()})
			if err != nil {
				return writeErr(cmd, err)
			}
			ln, err := net.Listen("tcp", bind)
			if err != nil {
				return writeErr(cmd, fmt.Errorf("web: listen %s: %w", bind, err))
			}

			pageURL := "http://" + ln.Addr().String() + "/"
			info := map[string]any{"url": pageURL, "addr": ln.Addr().String(), "opened": false}
			if openWindow {
				if err := openPath(pageURL); err != nil {
					app.logger().Warn("could not open browser", "url", pageURL, "err", err)
					info["openError"] = err.Error()
				} else {
					info["opened"] = true
				}
			}
			_ = writeOut(cmd, app, map[string]any{"data": info})
			fmt.Fprintf(cmd.ErrOrStderr(), "Serving %s (Ctrl+C to stop)\n", pageURL)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return serveUntilDone(ctx, ln, srv.Handler(), app)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:3335", "Listen address (host:port or :port)")
	cmd.Flags().BoolVar(&openWindow, "open", true, "Open the page in the default browser")
	return cmd
}

// serveUntilDone serves h on ln until ctx is cancelled, then drains open
// requests for up to shutdownGrace.
func serveUntilDone(ctx context.Context, ln net.Listener, h http.Handler, app *App) error {
	hs := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- hs.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	app.logger().Info("shutting down web server")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := hs.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// openPath hands a URL or file to the desktop's default opener.
func openPath(target string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return errors.New("nothing to open")
	}
	var c *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		c = exec.Command("open", target)
	case "windows":
		c = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		c = exec.Command("xdg-open", target)
	}
	return c.Start()
}
