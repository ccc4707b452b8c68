package api

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"molt/internal/api/models"
	"molt/internal/events"
	"molt/internal/feed"
	"molt/internal/logging"
	"molt/internal/version"
)

// Server is the Huma v2 API server for the development feed
type Server struct {
	api         huma.API
	mux         *http.ServeMux
	httpServer  *http.Server
	feedService feed.FeedService
	eventBus    *events.Bus
	options     *Options
	logger      *slog.Logger
}

// basicAuthMiddleware creates middleware for HTTP basic authentication
func (s *Server) basicAuthMiddleware(username, password string) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		// Skip auth for operations without security requirements
		op := ctx.Operation()
		if op != nil && len(op.Security) == 0 {
			next(ctx)
			return
		}

		// Try Authorization header first
		authHeader := ctx.Header("Authorization")
		var credentials string
		var parts []string

		if authHeader != "" {
			// Parse "Basic <credentials>" format
			const prefix = "Basic "
			if !strings.HasPrefix(authHeader, prefix) {
				ctx.SetHeader("WWW-Authenticate", `Basic realm="Molt API"`)
				huma.WriteErr(s.api, ctx, http.StatusUnauthorized, "Invalid authentication type")
				return
			}

			// Decode base64 credentials
			encoded := authHeader[len(prefix):]
			decoded, err := base64.StdEncoding.DecodeString(encoded)
			if err != nil {
				ctx.SetHeader("WWW-Authenticate", `Basic realm="Molt API"`)
				huma.WriteErr(s.api, ctx, http.StatusUnauthorized, "Invalid credentials format", err)
				return
			}

			credentials = string(decoded)
		} else {
			// For SSE endpoints, try query parameters as fallback
			queryAuth := ctx.Query("auth")
			if queryAuth != "" {
				decoded, err := base64.StdEncoding.DecodeString(queryAuth)
				if err != nil {
					ctx.SetHeader("WWW-Authenticate", `Basic realm="Molt API"`)
					huma.WriteErr(s.api, ctx, http.StatusUnauthorized, "Invalid credentials format", err)
					return
				}
				credentials = string(decoded)
			}
		}

		if credentials == "" {
			ctx.SetHeader("WWW-Authenticate", `Basic realm="Molt API"`)
			huma.WriteErr(s.api, ctx, http.StatusUnauthorized, "Authentication required")
			return
		}

		// Split username:password
		parts = strings.SplitN(credentials, ":", 2)
		if len(parts) != 2 {
			ctx.SetHeader("WWW-Authenticate", `Basic realm="Molt API"`)
			huma.WriteErr(s.api, ctx, http.StatusUnauthorized, "Invalid credentials format")
			return
		}

		// Validate credentials
		if parts[0] != username || parts[1] != password {
			ctx.SetHeader("WWW-Authenticate", `Basic realm="Molt API"`)
			huma.WriteErr(s.api, ctx, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		// Continue to next handler
		next(ctx)
	}
}

// Options configures the API server
type Options struct {
	AuthUsername      string
	AuthPassword      string
	StaticDir         string
	Cors              bool // Permissive CORS for pages served from other dev ports
	FeedService       feed.FeedService
	EventBus          *events.Bus
	PrometheusHandler http.Handler // Optional Prometheus metrics handler
}

// NewServer creates a new API server with Huma v2 using Go 1.22+ native routing
func NewServer(opts *Options) *Server {
	mux := http.NewServeMux()

	// Configure CORS
	corsConfig := DefaultCORSConfig()

	// Add CORS preflight handler for all OPTIONS requests
	if opts.Cors {
		AddCORSHandler(mux, corsConfig)
	}

	// Create Huma API with Go standard library adapter
	config := huma.DefaultConfig("Molt API", version.String())
	config.Info.Description = "Development feed API with live-reload event streaming"
	// Empty servers list will make OpenAPI use relative paths, working with any host
	config.Servers = []*huma.Server{}

	// Configure basic auth security scheme
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"basicAuth": {
			Type:   "http",
			Scheme: "basic",
		},
	}

	api := humago.New(mux, config)

	server := &Server{
		api:         api,
		mux:         mux,
		feedService: opts.FeedService,
		eventBus:    opts.EventBus,
		options:     opts,
		logger:      logging.GetLogger("api"),
	}

	// Apply CORS middleware first (before auth)
	if opts.Cors {
		api.UseMiddleware(NewCORSMiddleware(corsConfig))
	}

	// Apply HTTP logging middleware after CORS but before auth
	api.UseMiddleware(HTTPLoggingMiddleware)

	// Record request metrics after logging so auth rejections are counted too
	api.UseMiddleware(MetricsMiddleware)

	// Apply basic auth middleware globally if credentials are provided
	if opts.AuthUsername != "" && opts.AuthPassword != "" {
		api.UseMiddleware(server.basicAuthMiddleware(opts.AuthUsername, opts.AuthPassword))
	}

	// Register Prometheus metrics endpoint before other routes (no auth required)
	// This needs to be done before registerRoutes to avoid conflicts with CORS
	if opts.PrometheusHandler != nil {
		mux.Handle("GET /metrics", opts.PrometheusHandler)
	}

	// Register routes
	server.registerRoutes()

	// Serve static files at root, but only for non-API paths
	staticHandler := newStaticHandler(opts.StaticDir)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// If path starts with /api, let it fall through to API handlers
		if strings.HasPrefix(r.URL.Path, "/api") {
			http.NotFound(w, r)
			return
		}
		staticHandler.ServeHTTP(w, r)
	})

	return server
}

// GetMux returns the underlying HTTP ServeMux for additional setup
func (s *Server) GetMux() *http.ServeMux {
	return s.mux
}

// GetAPI returns the Huma API instance
func (s *Server) GetAPI() huma.API {
	return s.api
}

// Start starts the HTTP server on the specified address
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting Molt API server", "addr", addr)
	s.logger.Info("OpenAPI documentation available", "url", "http://"+addr+"/docs")

	// Create HTTP server with proper shutdown support
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}

	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	s.logger.Info("Stopping API server")

	// Force immediate shutdown - don't wait for connections
	if s.httpServer != nil {
		return s.httpServer.Close()
	}

	return nil
}

// registerRoutes sets up all API endpoints
func (s *Server) registerRoutes() {
	// Health check endpoint - no auth required
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Description: "Check API health status",
		Tags:        []string{"health"},
		Security:    []map[string][]string{}, // Empty security = no auth required
	}, func(ctx context.Context, input *struct{}) (*models.HealthResponse, error) {
		return &models.HealthResponse{
			Body: models.HealthData{
				Status:  "ok",
				Message: "API is healthy",
			},
		}, nil
	})

	// Version endpoint - no auth required
	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Get application version information",
		Tags:        []string{"system"},
		Security:    []map[string][]string{}, // Empty security = no auth required
	}, func(ctx context.Context, input *struct{}) (*models.VersionResponse, error) {
		versionInfo := version.Get()
		return &models.VersionResponse{
			Body: models.VersionData{
				Version:   versionInfo.Version,
				GitCommit: versionInfo.GitCommit,
				BuildDate: versionInfo.BuildDate,
				GoVersion: versionInfo.GoVersion,
				Platform:  versionInfo.Platform,
			},
		}, nil
	})

	// Post and comment endpoints
	s.registerPostRoutes()

	// SSE endpoints
	s.registerSSERoutes()
}

// withAuth returns security requirement for basic auth
func withAuth() []map[string][]string {
	return []map[string][]string{
		{"basicAuth": {}},
	}
}
