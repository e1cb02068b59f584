package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/tuition-quoter/internal/api"
	"github.com/eugenenazirov/tuition-quoter/internal/calculator"
	"github.com/eugenenazirov/tuition-quoter/internal/config"
	"github.com/eugenenazirov/tuition-quoter/internal/proposal"
	"github.com/eugenenazirov/tuition-quoter/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage    storage.Storage
	catalog    calculator.Catalog
	calculator calculator.Calculator
	proposals  *proposal.Builder
	handler    *api.Handler
	router     http.Handler
	logger     *zap.Logger
	server     *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	seed, err := cfg.Catalog()
	if err != nil {
		return nil, fmt.Errorf("invalid package catalog: %w", err)
	}

	ctx := context.Background()
	store, err := OpenStorage(ctx, cfg.CatalogDB, seed)
	if err != nil {
		return nil, err
	}

	if cfg.CatalogOverride {
		if err := ApplyConfiguredCatalog(ctx, store, seed, logger); err != nil {
			_ = store.Close()
			return nil, err
		}
	}

	catalog, err := store.LoadCatalog(ctx)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load package catalog: %w", err)
	}
	logger.Info("package catalog loaded",
		zap.String("source", catalogSource(cfg.CatalogDB)),
		zap.Int("packages", catalog.Len()),
		zap.String("service_fee", catalog.ServiceFee().String()),
	)

	calc := calculator.New(catalog)
	builder := proposal.NewBuilder(calc)
	handler := api.NewHandler(calc, builder)
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	rootHandler, err := BuildRootHandler(apiRouter)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to build HTTP handler: %w", err)
	}

	return &App{
		storage:    store,
		catalog:    catalog,
		calculator: calc,
		proposals:  builder,
		handler:    handler,
		router:     apiRouter,
		logger:     logger,
		server:     NewServer(cfg, rootHandler),
	}, nil
}

// OpenStorage returns a SQLite-backed catalog store when path is set and an
// in-memory one seeded with seed otherwise.
func OpenStorage(ctx context.Context, path string, seed calculator.Catalog) (storage.Storage, error) {
	if strings.TrimSpace(path) == "" {
		return storage.NewMemoryStorageWithCatalog(seed), nil
	}
	store, err := storage.NewSQLite(ctx, path, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	return store, nil
}

type catalogWriter interface {
	ReplaceCatalog(ctx context.Context, catalog calculator.Catalog) error
}

// ApplyConfiguredCatalog writes the configured catalog over whatever the store
// already holds. In-memory stores are seeded from it and need nothing.
func ApplyConfiguredCatalog(ctx context.Context, store storage.Storage, catalog calculator.Catalog, logger *zap.Logger) error {
	writer, ok := store.(catalogWriter)
	if !ok {
		return nil
	}
	if err := writer.ReplaceCatalog(ctx, catalog); err != nil {
		return fmt.Errorf("failed to apply configured package catalog: %w", err)
	}
	logger.Info("configured package catalog written to database",
		zap.Int("packages", catalog.Len()),
		zap.String("service_fee", catalog.ServiceFee().String()),
	)
	return nil
}

func catalogSource(path string) string {
	if strings.TrimSpace(path) == "" {
		return "memory"
	}
	return path
}

// BuildRootHandler constructs the root HTTP handler that serves static files and routes API requests.
func BuildRootHandler(apiHandler http.Handler) (http.Handler, error) {
	mux := http.NewServeMux()

	staticPath, err := resolveProjectPath(filepath.Join("web", "static"))
	if err != nil {
		return nil, err
	}
	staticDir := http.Dir(staticPath)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(staticDir)))
	mux.Handle("/api/", apiHandler)

	indexPath, err := resolveProjectPath(filepath.Join("web", "templates", "index.html"))
	if err != nil {
		return nil, err
	}
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, indexPath)
	}))

	return mux, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Catalog returns the package catalog the application prices against.
func (a *App) Catalog() calculator.Catalog {
	return a.catalog
}

// Close releases the catalog store.
func (a *App) Close() error {
	if a.storage == nil {
		return nil
	}
	return a.storage.Close()
}

// resolveProjectPath locates a file or directory relative to the project root by walking up the directory tree.
func resolveProjectPath(relative string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, relative)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("unable to locate %s", relative)
}
