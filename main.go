// Command tictactoe-bot starts the tic-tac-toe game server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing the REST API, the
//     WebSocket notice feed, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP
//     API if none is available
//
// Settings come from TTT_* environment variables (optionally seeded from a
// .env file); flags override host/port, enable debug logging, version
// output, and optional ngrok tunneling for easy external access during
// development.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/chalwk/tictactoe-bot/api"
	"github.com/chalwk/tictactoe-bot/game/config"
	"github.com/chalwk/tictactoe-bot/game/service"
	"github.com/chalwk/tictactoe-bot/game/session"
	"github.com/chalwk/tictactoe-bot/transport/mcp"
	"github.com/chalwk/tictactoe-bot/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Tic-Tac-Toe Bot Server"
)

// Flags override the environment-driven settings where it is convenient
// during development. Zero values mean "use the TTT_* setting".
var (
	port         = flag.Int("port", 0, "HTTP server port (overrides TTT_PORT)")
	host         = flag.String("host", "", "HTTP server host (overrides TTT_HOST)")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio        Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "  mcp              Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                    # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -port 9090         # Run HTTP server on port 9090\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s stdio-mcp          # Run MCP stdio server\n", os.Args[0])
	}
}

// main parses flags, initializes services, and starts the selected mode.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "Loaded environment variables from .env file")
	}

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load settings: %v\n", err)
		os.Exit(1)
	}
	settings = applyFlagOverrides(settings, *host, *port, *debug)

	level := slog.LevelInfo
	if settings.Debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	mode := resolveMode(flag.Args())
	log.Info("starting", "app", AppName, "version", Version, "mode", mode)

	deps, err := initializeServices(settings, log)
	if err != nil {
		log.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}

	switch mode {
	case "stdio-mcp":
		runStdioMCP(settings, deps, log)

	case "server":
		runHTTPServer(settings, deps, log)

	default:
		log.Error("unknown mode, use 'server' (default) or 'stdio-mcp'", "mode", mode)
		os.Exit(1)
	}
}

// resolveMode maps the positional argument to a mode, folding the stdio
// aliases together.
func resolveMode(args []string) string {
	if len(args) == 0 {
		return "server"
	}
	switch args[0] {
	case "server", "http":
		return "server"
	case "stdio-mcp", "mcp-stdio", "mcp":
		return "stdio-mcp"
	default:
		return args[0]
	}
}

// applyFlagOverrides layers the command-line flags over the env settings.
func applyFlagOverrides(s config.Settings, host string, port int, debug bool) config.Settings {
	if host != "" {
		s.Host = host
	}
	if port != 0 {
		s.Port = port
	}
	if debug {
		s.Debug = true
	}
	return s
}

// services bundles everything the transports need.
type services struct {
	hub       *websocket.Hub
	matches   service.MatchService
	channels  *config.Channels
	cooldowns *api.CooldownManager
}

// initializeServices wires the hub, the session registry, and the match
// service together.
func initializeServices(settings config.Settings, log *slog.Logger) (*services, error) {
	channels, err := config.LoadChannels(settings.ChannelsFile)
	if err != nil {
		return nil, fmt.Errorf("load channel list: %w", err)
	}

	hub := websocket.NewHub(log)
	go hub.Run()

	games := session.NewManager(websocket.NewHubSink(hub), session.Config{
		TimeLimit:    settings.TimeLimit,
		PollInterval: settings.PollInterval,
	}, log)

	return &services{
		hub:       hub,
		matches:   service.NewMatchService(games, channels, log),
		channels:  channels,
		cooldowns: api.NewCooldownManager(settings.Cooldown),
	}, nil
}

// buildRouter assembles the API server plus the /mcp proxy endpoint.
func buildRouter(deps *services, baseURL string, log *slog.Logger) http.Handler {
	apiServer := api.NewServer(deps.matches, deps.hub, deps.channels, deps.cooldowns, log)
	mcpClient := mcp.NewClient(baseURL, "mcp")

	router := http.NewServeMux()
	router.Handle("/", apiServer)
	router.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})
	return router
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an
// /mcp proxy endpoint. If ngrok is enabled (via flag or environment), it
// also provisions a public tunnel.
func runHTTPServer(settings config.Settings, deps *services, log *slog.Logger) {
	addr := settings.Addr()
	router := buildRouter(deps, fmt.Sprintf("http://%s", addr), log)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info("HTTP server listening", "addr", addr)
		log.Info("endpoints",
			"api", fmt.Sprintf("http://%s/api", addr),
			"ws", fmt.Sprintf("ws://%s/ws?game=<game_id>", addr),
			"mcp", fmt.Sprintf("http://%s/mcp", addr))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	ngrokShouldRun := *ngrokEnabled
	if !ngrokShouldRun {
		if envEnabled := os.Getenv("NGROK_ENABLED"); envEnabled == "true" || envEnabled == "1" {
			ngrokShouldRun = true
		}
	}

	if ngrokShouldRun {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, router, log)
		}()
	}

	sig := <-stop
	log.Info("shutting down", "signal", sig.String())
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	wg.Wait()
	log.Info("server stopped")
}

// runNgrokTunnel serves the router through a public ngrok endpoint until
// ctx is canceled.
func runNgrokTunnel(ctx context.Context, handler http.Handler, log *slog.Logger) {
	authToken := *ngrokAuth
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTHTOKEN")
	}
	if authToken == "" {
		log.Warn("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	log.Info("starting ngrok tunnel")

	domain := *ngrokDomain
	if domain == "" {
		domain = os.Getenv("NGROK_DOMAIN")
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Info("using custom ngrok domain", "domain", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Error("failed to start ngrok tunnel", "error", err)
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			log.Error("failed to close ngrok tunnel", "error", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Info("ngrok tunnel established", "url", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Error("ngrok server error", "error", err)
	}
	log.Info("ngrok tunnel closed")
}

// runStdioMCP runs an MCP stdio server. It tries to reuse an external API
// at the configured address; if unavailable, it starts a minimal internal
// HTTP API bound to a random loopback port and targets that.
func runStdioMCP(settings config.Settings, deps *services, log *slog.Logger) {
	externalURL := fmt.Sprintf("http://%s", settings.Addr())
	log.Info("checking for external API server", "url", externalURL)

	var baseURL string
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Info("external API server found, using it for MCP", "url", externalURL)
		baseURL = externalURL
	} else {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			log.Error("failed to get available port", "error", err)
			os.Exit(1)
		}

		internalAddr := listener.Addr().String()
		log.Info("starting internal HTTP server for MCP stdio", "addr", internalAddr)

		apiServer := api.NewServer(deps.matches, deps.hub, deps.channels, deps.cooldowns, log)
		httpServer := &http.Server{Handler: apiServer}

		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Error("internal HTTP server error", "error", err)
			}
		}()

		// Wait a moment for the server to be ready
		time.Sleep(100 * time.Millisecond)

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL, "mcp")

	log.Info("MCP stdio server ready", "base_url", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		log.Error("MCP stdio server error", "error", err)
		os.Exit(1)
	}
}
