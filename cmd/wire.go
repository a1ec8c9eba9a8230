package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bnema/apex-activities-cli/internal/adapters/browser/chrome"
	"github.com/bnema/apex-activities-cli/internal/adapters/browser/pw"
	"github.com/bnema/apex-activities-cli/internal/adapters/host/postgres"
	"github.com/bnema/apex-activities-cli/internal/adapters/host/sqlite"
	"github.com/bnema/apex-activities-cli/internal/adapters/host/yamlfile"
	"github.com/bnema/apex-activities-cli/internal/adapters/portal"
	"github.com/bnema/apex-activities-cli/internal/adapters/prompt"
	"github.com/bnema/apex-activities-cli/internal/adapters/render/summary"
	tomlrepo "github.com/bnema/apex-activities-cli/internal/adapters/repo/toml"
	chainstore "github.com/bnema/apex-activities-cli/internal/adapters/secrets/chain"
	"github.com/bnema/apex-activities-cli/internal/application"
	"github.com/bnema/apex-activities-cli/internal/config"
	"github.com/bnema/apex-activities-cli/internal/domain"
	"github.com/bnema/apex-activities-cli/internal/observability"
	"github.com/bnema/apex-activities-cli/internal/ports"
)

var errUnknownSelector = errors.New("unknown login selector")

type app struct {
	cfg             *config.Config
	logger          *zap.Logger
	credentialRepo  ports.CredentialRepository
	secretStore     ports.SecretStore
	jars            ports.CookieJarStore
	fetcher         ports.ActivityFetcher
	login           *application.Login
	categories      []domain.Category
	clock           ports.Clock
	summaryRenderer func(application.SyncResult, summary.RenderOptions) (string, error)
}

// newBrowserLauncher is swapped in tests to avoid starting a real browser.
var newBrowserLauncher = defaultBrowserLauncher

func wireApp() (*app, error) {
	cfg, err := config.Load(viper.New())
	if err != nil {
		return nil, err
	}

	observability.InitializeLogger(cfg.Logger)
	logger := observability.GetLogger()

	secretStore, err := chainstore.Open(cfg.Secrets.Backend, cfg.Secrets.Root)
	if err != nil {
		return nil, fmt.Errorf("wire secret store: %w", err)
	}

	credentialRepo, err := tomlrepo.NewCredentialRepository(cfg.Credentials.Path)
	if err != nil {
		return nil, fmt.Errorf("wire credential repository: %w", err)
	}

	jars, err := tomlrepo.NewCookieJarRepository(cfg.Cookies.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("wire cookie jar repository: %w", err)
	}

	categories, err := parseCategories(cfg.Portal.Categories)
	if err != nil {
		return nil, err
	}

	selectors, err := loginSelectors(cfg.Browser.Selectors)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:            cfg,
		logger:         logger,
		credentialRepo: credentialRepo,
		secretStore:    secretStore,
		jars:           jars,
		fetcher: portal.NewClient(portal.Config{
			ActivitiesURL:     cfg.Portal.ActivitiesURL,
			RequestsPerSecond: cfg.Portal.RequestsPerSecond,
			RequestTimeout:    cfg.Portal.Timeout,
		}, logger),
		login: application.NewLogin(application.LoginConfig{
			URL:         cfg.Portal.LoginURL,
			Selectors:   selectors,
			WaitTimeout: cfg.Browser.WaitTimeout,
			SettleDelay: cfg.Browser.SettleDelay,
		}, logger),
		categories:      categories,
		clock:           ports.SystemClock{},
		summaryRenderer: summary.Render,
	}, nil
}

// credentialService prompts on the given terminal only; piped or redirected
// input makes missing credentials a hard error.
func (a *app) credentialService(in io.Reader, out io.Writer) *application.CredentialService {
	var prompter ports.CredentialPrompter
	if interactive(in) {
		prompter = prompt.NewPrompter(in, out)
	}
	return application.NewCredentialService(a.credentialRepo, a.secretStore, prompter, a.logger)
}

func (a *app) sessionManager() (*application.SessionManager, error) {
	launcher, err := newBrowserLauncher(a.cfg.Browser, a.logger)
	if err != nil {
		return nil, fmt.Errorf("wire browser launcher: %w", err)
	}
	return application.NewSessionManager(launcher, a.jars, a.login, a.clock, a.logger), nil
}

// openPipe connects to the configured host. The returned close func is never
// nil.
func (a *app) openPipe(ctx context.Context, target string) (ports.Pipe, func(), error) {
	host := a.cfg.Host
	switch host.Backend {
	case "postgres":
		pool, err := postgres.Connect(ctx, host.DSN)
		if err != nil {
			return nil, func() {}, err
		}
		pipe, err := postgres.Open(ctx, pool, target, host.Flavor, a.logger)
		if err != nil {
			pool.Close()
			return nil, func() {}, err
		}
		return pipe, pool.Close, nil
	case "sqlite":
		pipe, err := sqlite.Open(ctx, host.Path, target, a.logger)
		if err != nil {
			return nil, func() {}, err
		}
		return pipe, func() {
			if err := pipe.Close(); err != nil {
				a.logger.Warn("close sqlite host", zap.Error(err))
			}
		}, nil
	case "yaml":
		pipe, err := yamlfile.Open(host.Path, target, a.logger)
		if err != nil {
			return nil, func() {}, err
		}
		return pipe, func() {}, nil
	default:
		return nil, func() {}, fmt.Errorf("unsupported host backend %q", host.Backend)
	}
}

func defaultBrowserLauncher(cfg config.BrowserConfig, logger *zap.Logger) (ports.BrowserLauncher, error) {
	switch cfg.Driver {
	case "playwright":
		return pw.NewLauncher(pw.Config{
			Engine:       cfg.Engine,
			Headless:     cfg.Headless,
			WindowWidth:  cfg.WindowWidth,
			WindowHeight: cfg.WindowHeight,
			Install:      envOrDefault("APX_PLAYWRIGHT_INSTALL", "") == "1",
		}, logger)
	default:
		return chrome.NewLauncher(chrome.Config{
			Headless:     cfg.Headless,
			WindowWidth:  cfg.WindowWidth,
			WindowHeight: cfg.WindowHeight,
			ExecPath:     envOrDefault("APX_CHROME_PATH", ""),
		}, logger), nil
	}
}

func parseCategories(raw []string) ([]domain.Category, error) {
	categories := make([]domain.Category, 0, len(raw))
	for _, value := range raw {
		category, err := domain.ParseCategory(value)
		if err != nil {
			return nil, fmt.Errorf("portal.categories: %w", err)
		}
		categories = append(categories, category)
	}
	return categories, nil
}

// loginSelectors applies browser.selectors overrides on top of the defaults.
func loginSelectors(overrides map[string]string) (application.LoginSelectors, error) {
	selectors := application.DefaultLoginSelectors()
	fields := map[string]*ports.Selector{
		"initial_username": &selectors.InitialUsername,
		"initial_submit":   &selectors.InitialSubmit,
		"username":         &selectors.Username,
		"password":         &selectors.Password,
		"login_button":     &selectors.LoginButton,
		"account":          &selectors.Account,
	}

	for name, raw := range overrides {
		field, ok := fields[name]
		if !ok {
			return application.LoginSelectors{}, fmt.Errorf("browser.selectors: %w %q", errUnknownSelector, name)
		}
		selector, err := ports.ParseSelector(raw)
		if err != nil {
			return application.LoginSelectors{}, fmt.Errorf("browser.selectors.%s: %w", name, err)
		}
		*field = selector
	}

	return selectors, nil
}

func interactive(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
