package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/stwcert/internal/adapters/browser"
	"github.com/bnema/stwcert/internal/adapters/credentials"
	statusadapter "github.com/bnema/stwcert/internal/adapters/render/status"
	tomlrepo "github.com/bnema/stwcert/internal/adapters/repo/toml"
	"github.com/bnema/stwcert/internal/adapters/secrets"
	"github.com/bnema/stwcert/internal/application"
	"github.com/bnema/stwcert/internal/domain"
	"github.com/bnema/stwcert/internal/logging"
	"github.com/bnema/stwcert/internal/ports"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configDirName  = ".stwcert"
	configFileName = "config.toml"
	envPrefix      = "STWCERT"
)

type app struct {
	cfg            *viper.Viper
	logger         *slog.Logger
	verbose        bool
	service        *application.Service
	sites          ports.SiteRepository
	secretStore    ports.SecretStore
	statusRenderer func([]application.CheckResult, statusadapter.RenderOptions) (string, error)
	batchRenderer  func([]application.BatchResult) (string, error)
	now            func() time.Time
}

type globalOptions struct {
	configFile string
	verbose    bool
}

func newConfig(cmd *cobra.Command, opts globalOptions) (*viper.Viper, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg := viper.New()
	cfg.SetDefault("panel.url", application.DefaultLoginURL)
	cfg.SetDefault("panel.module_link", application.DefaultModuleLinkText)
	cfg.SetDefault("credentials.file", credentials.DefaultFile)
	cfg.SetDefault("renewal.threshold", domain.DefaultRenewalThreshold)
	cfg.SetDefault("http.timeout", 30*time.Second)
	cfg.SetDefault("http.retries", 2)
	cfg.SetDefault("renew.concurrency", 4)
	cfg.SetDefault("secrets.backend", "chain")
	cfg.SetDefault("secrets.dir", filepath.Join(homeDir, configDirName, "secrets"))

	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	if flag := cmd.Root().PersistentFlags().Lookup("panel-url"); flag != nil {
		if err := cfg.BindPFlag("panel.url", flag); err != nil {
			return nil, fmt.Errorf("bind panel-url flag: %w", err)
		}
	}

	configFile := opts.configFile
	if configFile == "" {
		configFile = filepath.Join(homeDir, configDirName, configFileName)
		if _, err := os.Stat(configFile); errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
	}

	cfg.SetConfigFile(configFile)
	if err := cfg.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", configFile, err)
	}

	return cfg, nil
}

func wireApp(cmd *cobra.Command, opts globalOptions) (*app, error) {
	cfg, err := newConfig(cmd, opts)
	if err != nil {
		return nil, err
	}

	repo, err := tomlrepo.NewRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire site repository: %w", err)
	}

	secretStore, err := newSecretStore(cfg)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:            cfg,
		logger:         logging.New(cmd.OutOrStdout(), opts.verbose),
		verbose:        opts.verbose,
		service:        application.NewService(repo, secretStore),
		sites:          repo,
		secretStore:    secretStore,
		statusRenderer: statusadapter.Render,
		batchRenderer:  statusadapter.RenderBatch,
		now:            time.Now,
	}, nil
}

func newSecretStore(cfg *viper.Viper) (ports.SecretStore, error) {
	dir := cfg.GetString("secrets.dir")

	switch backend := cfg.GetString("secrets.backend"); backend {
	case "chain", "":
		store, err := secrets.NewPassFirstWithFileFallback(dir)
		if err != nil {
			return nil, fmt.Errorf("wire secret store chain: %w", err)
		}
		return store, nil
	case "file":
		return secrets.NewFileStore(dir), nil
	case "pass":
		return secrets.NewPassStore(), nil
	default:
		return nil, fmt.Errorf("unknown secrets.backend %q (want chain, file or pass)", backend)
	}
}

// logTo redirects progress logging, e.g. away from stdout when it carries JSON.
func (a *app) logTo(w io.Writer) {
	a.logger = logging.New(w, a.verbose)
}

// newPanel starts a fresh, logged-out panel context for this invocation.
func (a *app) newPanel(ctx context.Context) (*application.Panel, error) {
	client, err := browser.New(browser.Options{
		Timeout: a.cfg.GetDuration("http.timeout"),
		Retries: uint64(max(a.cfg.GetInt("http.retries"), 0)),
	})
	if err != nil {
		return nil, fmt.Errorf("wire browser: %w", err)
	}

	return application.NewPanel(application.PanelConfig{
		LoginURL:       a.cfg.GetString("panel.url"),
		ModuleLinkText: a.cfg.GetString("panel.module_link"),
	}, client, a.credentialsProvider(ctx), ports.SystemClock{}, a.logger), nil
}

func (a *app) newRenewer(ctx context.Context, loader ports.MaterialLoader, force bool) (*application.Renewer, error) {
	panel, err := a.newPanel(ctx)
	if err != nil {
		return nil, err
	}

	return application.NewRenewer(panel, loader, application.RenewerConfig{
		Threshold: a.threshold(),
		Force:     force,
	}), nil
}

func (a *app) threshold() time.Duration {
	return a.cfg.GetDuration("renewal.threshold")
}

// credentialsProvider prefers a password kept in the secret store and falls
// back to the credentials file.
func (a *app) credentialsProvider(ctx context.Context) ports.CredentialsProvider {
	username := a.cfg.GetString("panel.username")
	ref := a.cfg.GetString("auth.password_ref")
	fileProvider := credentials.NewFileProvider(a.cfg.GetString("credentials.file"))
	if username == "" {
		return fileProvider
	}

	secretProvider := credentials.NewSecretProvider(username, ref, a.secretStore)
	if ref != "" {
		return secretProvider
	}
	if _, err := a.secretStore.Get(ctx, secretProvider.Key()); err != nil {
		a.logger.Debug("no stored panel password, using credentials file", "file", fileProvider.Path(), "err", err)
		return fileProvider
	}
	return secretProvider
}
