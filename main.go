// Command pacman starts the Pac-Man game server.
//
// It supports two modes:
//  1. "serve" (default) – runs the HTTP server exposing the REST API, the WebSocket stream, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags, which can also be set through environment variables or a .env file,
// control host/port, the config directory, debug logging, score submission,
// and optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/pacman/api"
	"github.com/wricardo/mcp-training/pacman/game/config"
	"github.com/wricardo/mcp-training/pacman/game/scores"
	"github.com/wricardo/mcp-training/pacman/game/service"
	"github.com/wricardo/mcp-training/pacman/game/session"
	"github.com/wricardo/mcp-training/pacman/transport/mcp"
	"github.com/wricardo/mcp-training/pacman/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Pac-Man Game Server"
)

// Session cleanup cadence
const (
	cleanupInterval = time.Hour
	defaultTTL      = 24 * time.Hour
)

// options holds the resolved command line configuration
type options struct {
	Host          string
	Port          int
	ConfigDir     string
	Debug         bool
	ScoreEndpoint string
	TickInterval  time.Duration
	SessionTTL    time.Duration
	APIURL        string
	Ngrok         bool
	NgrokAuth     string
	NgrokDomain   string
}

func (o options) addr() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
		&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
		&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing map configurations", Sources: cli.EnvVars("CONFIG_DIR")},
		&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging", Sources: cli.EnvVars("DEBUG")},
		&cli.StringFlag{Name: "score-endpoint", Usage: "URL receiving finished games as JSON (optional)", Sources: cli.EnvVars("SCORE_ENDPOINT")},
		&cli.DurationFlag{Name: "tick-interval", Usage: "Override the tick interval of realtime sessions (default: the map's tick rate)", Sources: cli.EnvVars("TICK_INTERVAL")},
		&cli.DurationFlag{Name: "session-ttl", Value: defaultTTL, Usage: "Remove sessions idle for longer than this", Sources: cli.EnvVars("SESSION_TTL")},
		&cli.StringFlag{Name: "api-url", Value: "http://localhost:8080", Usage: "External API used by the mcp command when reachable", Sources: cli.EnvVars("PACMAN_API_URL")},
		&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
		&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
		&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
	}
}

func optionsFrom(cmd *cli.Command) options {
	return options{
		Host:          cmd.String("host"),
		Port:          cmd.Int("port"),
		ConfigDir:     cmd.String("config-dir"),
		Debug:         cmd.Bool("debug"),
		ScoreEndpoint: cmd.String("score-endpoint"),
		TickInterval:  cmd.Duration("tick-interval"),
		SessionTTL:    cmd.Duration("session-ttl"),
		APIURL:        cmd.String("api-url"),
		Ngrok:         cmd.Bool("ngrok"),
		NgrokAuth:     cmd.String("ngrok-auth"),
		NgrokDomain:   cmd.String("ngrok-domain"),
	}
}

func newCommand() *cli.Command {
	serve := func(ctx context.Context, cmd *cli.Command) error {
		return runHTTPServer(ctx, optionsFrom(cmd))
	}

	return &cli.Command{
		Name:    "pacman",
		Usage:   AppName,
		Version: Version,
		Flags:   flags(),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			setupLogging(cmd.Bool("debug"))
			return ctx, nil
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  serve,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server, with an internal HTTP server when no API is reachable",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runStdioMCP(ctx, optionsFrom(cmd))
				},
			},
		},
	}
}

func setupLogging(debug bool) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).Warn("error loading .env file")
		}
	} else {
		log.Info("loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.WithError(err).Fatal("server failed")
	}
}

// app bundles the wired services of one process
type app struct {
	service  service.GameService
	sessions *session.Manager
	configs  *config.Manager
	hub      *websocket.Hub
}

// initializeServices wires the config and session managers, the score
// submitters, the WebSocket hub and the game service.
func initializeServices(opts options) (*app, error) {
	configManager, err := config.NewManager(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager()
	hub := websocket.NewHub()

	serviceOpts := []service.Option{
		service.WithPublisher(hub),
		service.WithTickInterval(opts.TickInterval),
	}
	if opts.ScoreEndpoint != "" {
		serviceOpts = append(serviceOpts, service.WithSubmitter(scores.NewHTTPSubmitter(opts.ScoreEndpoint, nil)))
		log.WithField("endpoint", opts.ScoreEndpoint).Info("submitting scores")
	}

	gameService := service.NewGameService(sessionManager, configManager, serviceOpts...)
	hub.SetController(gameService)

	return &app{
		service:  gameService,
		sessions: sessionManager,
		configs:  configManager,
		hub:      hub,
	}, nil
}

// handler combines the API server with an /mcp endpoint proxying to baseURL
func (a *app) handler(baseURL string) http.Handler {
	apiServer := api.NewServer(a.service, a.hub)
	apiServer.Handle("/mcp", mcpHandler(mcp.NewClient(baseURL)))
	return apiServer
}

// mcpHandler serves single JSON-RPC messages over HTTP POST
func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel. It returns when ctx is done.
func runHTTPServer(ctx context.Context, opts options) error {
	a, err := initializeServices(opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.hub.Run(ctx)
	go a.sessions.RunCleanup(ctx, cleanupInterval, opts.SessionTTL)

	addr := opts.addr()
	handler := a.handler(fmt.Sprintf("http://%s", addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.WithFields(log.Fields{
			"addr":      addr,
			"api":       fmt.Sprintf("http://%s/api", addr),
			"websocket": fmt.Sprintf("ws://%s/ws?session=<session_id>", addr),
			"mcp":       fmt.Sprintf("http://%s/mcp", addr),
		}).Info("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if opts.Ngrok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, opts, handler)
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-serveErr:
		cancel()
		wg.Wait()
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown error")
	}
	a.sessions.StopAll()

	wg.Wait()
	log.Info("server stopped")
	return nil
}

// runNgrok serves handler through an ngrok tunnel until ctx is done
func runNgrok(ctx context.Context, opts options, handler http.Handler) {
	logger := log.WithField("component", "ngrok")

	if opts.NgrokAuth == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if opts.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.NgrokDomain))
		logger.WithField("domain", opts.NgrokDomain).Info("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.NgrokAuth))
	if err != nil {
		logger.WithError(err).Error("failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.WithError(err).Warn("failed to close ngrok tunnel")
		}
	}()

	url := tun.URL()
	logger.WithFields(log.Fields{
		"url":       url,
		"api":       url + "/api",
		"websocket": url + "/ws?session=<session_id>",
		"mcp":       url + "/mcp",
	}).Info("ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.WithError(err).Warn("ngrok server error")
	}
	logger.Info("ngrok tunnel closed")
}

// apiReachable reports whether a Pac-Man API answers at baseURL
func apiReachable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP runs an MCP stdio server.
// It reuses the API at opts.APIURL when reachable; otherwise it starts an internal
// HTTP API bound to a random loopback port and targets that.
func runStdioMCP(ctx context.Context, opts options) error {
	baseURL := opts.APIURL

	if apiReachable(baseURL) {
		log.WithField("url", baseURL).Info("external API server found, using it for MCP")
	} else {
		log.Info("no external API server found, starting internal HTTP server")

		a, err := initializeServices(opts)
		if err != nil {
			return err
		}

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())

		go a.hub.Run(ctx)
		go a.sessions.RunCleanup(ctx, cleanupInterval, opts.SessionTTL)

		httpServer := &http.Server{Handler: api.NewServer(a.service, a.hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("internal HTTP server error")
			}
		}()
		defer func() {
			httpServer.Close()
			a.sessions.StopAll()
		}()

		log.WithField("url", baseURL).Info("internal HTTP server ready")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
