// Package app wires configuration, storage, clients, and services into the
// shared core used by cmd/authserv-server.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/avela-io/authserv/internal/auth"
	"github.com/avela-io/authserv/internal/clients/directory"
	"github.com/avela-io/authserv/internal/common"
	"github.com/avela-io/authserv/internal/interfaces"
	"github.com/avela-io/authserv/internal/storage/auditdb"
)

// App holds all initialized services and clients.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Audit       interfaces.AuditStore
	Directory   interfaces.DirectoryClient
	Verifier    interfaces.CredentialVerifier
	Registry    *auth.ClientRegistry
	Issuer      *auth.TokenIssuer
	Tracker     interfaces.AttemptTracker
	StartupTime time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, logging, the audit store, the directory
// client, and the auth services. configPath may be empty, in which case the
// default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	// Load configuration - check provided path, AUTHSERV_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("AUTHSERV_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "authserv.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/authserv.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative audit path to binary directory
	if config.Audit.Path != "" && !filepath.IsAbs(config.Audit.Path) {
		config.Audit.Path = filepath.Join(binDir, config.Audit.Path)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	if len(config.Clients) == 0 {
		return nil, fmt.Errorf("no client applications configured")
	}
	if config.Signing.Key == "" {
		return nil, fmt.Errorf("signing key is not configured")
	}

	audit, err := auditdb.NewStore(logger, config.Audit.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audit store: %w", err)
	}

	dirClient := directory.NewClient(
		directory.WithBaseURL(config.Directory.BaseURL),
		directory.WithLogger(logger),
		directory.WithTimeout(config.Directory.GetTimeout()),
		directory.WithRateLimit(config.Directory.RateLimit),
	)

	verifier := auth.NewBcryptVerifier(bcrypt.DefaultCost)

	registry, err := auth.NewClientRegistry(config.Clients, verifier, logger)
	if err != nil {
		audit.Close()
		return nil, fmt.Errorf("failed to build client registry: %w", err)
	}

	tracker := auth.NewLoginAttemptTracker(dirClient, audit, logger)
	issuer := auth.NewTokenIssuer(registry, dirClient, verifier, tracker, config.Signing, logger)

	a := &App{
		Config:      config,
		Logger:      logger,
		Audit:       audit,
		Directory:   dirClient,
		Verifier:    verifier,
		Registry:    registry,
		Issuer:      issuer,
		Tracker:     tracker,
		StartupTime: startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Audit != nil {
		a.Audit.Close()
		a.Audit = nil
	}
}
