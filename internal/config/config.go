package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	envPrefix  = "APX"

	// Dir is the per-user state directory under the home directory.
	Dir = ".apx"
)

type Config struct {
	Portal      PortalConfig      `mapstructure:"portal"`
	Browser     BrowserConfig     `mapstructure:"browser"`
	Cookies     CookiesConfig     `mapstructure:"cookies"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Secrets     SecretsConfig     `mapstructure:"secrets"`
	Host        HostConfig        `mapstructure:"host"`
	Logger      LoggerConfig      `mapstructure:"logger"`
}

type PortalConfig struct {
	LoginURL          string        `mapstructure:"login_url"`
	ActivitiesURL     string        `mapstructure:"activities_url"`
	Categories        []string      `mapstructure:"categories"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

type BrowserConfig struct {
	Driver       string            `mapstructure:"driver"`
	Engine       string            `mapstructure:"engine"`
	Headless     bool              `mapstructure:"headless"`
	WindowWidth  int               `mapstructure:"window_width"`
	WindowHeight int               `mapstructure:"window_height"`
	WaitTimeout  time.Duration     `mapstructure:"wait_timeout"`
	SettleDelay  time.Duration     `mapstructure:"settle_delay"`
	Selectors    map[string]string `mapstructure:"selectors"`
}

type CookiesConfig struct {
	Path string `mapstructure:"path"`
}

type CredentialsConfig struct {
	Path string `mapstructure:"path"`
}

type SecretsConfig struct {
	Backend string `mapstructure:"backend"`
	Root    string `mapstructure:"root"`
}

type HostConfig struct {
	Backend string `mapstructure:"backend"`
	Flavor  string `mapstructure:"flavor"`
	DSN     string `mapstructure:"dsn"`
	Path    string `mapstructure:"path"`
	Target  string `mapstructure:"target"`
}

type LoggerConfig struct {
	Level       string      `mapstructure:"level"`
	Format      string      `mapstructure:"format"`
	AddSource   bool        `mapstructure:"add_source"`
	ServiceName string      `mapstructure:"service_name"`
	LogFile     string      `mapstructure:"file"`
	MaxSize     int         `mapstructure:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups"`
	MaxAge      int         `mapstructure:"max_age"`
	Compress    bool        `mapstructure:"compress"`
	Colors      ColorConfig `mapstructure:"colors"`
}

type ColorConfig struct {
	Debug string `mapstructure:"debug"`
	Info  string `mapstructure:"info"`
	Warn  string `mapstructure:"warn"`
	Error string `mapstructure:"error"`
}

func SetDefaults(v *viper.Viper, home string) {
	stateDir := filepath.Join(home, Dir)

	v.SetDefault("portal.login_url", "https://public-apps.apexclearing.com/session/#/login/")
	v.SetDefault("portal.activities_url", "https://public-api.apexclearing.com/activities-provider/api/v1/activities/")
	v.SetDefault("portal.categories", []string{"TRADES", "MONEY_MOVEMENTS", "POSITION_ADJUSTMENTS"})
	v.SetDefault("portal.requests_per_second", 2.0)
	v.SetDefault("portal.timeout", "30s")

	v.SetDefault("browser.driver", "chromedp")
	v.SetDefault("browser.engine", "firefox")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.window_width", 1920)
	v.SetDefault("browser.window_height", 1080)
	v.SetDefault("browser.wait_timeout", "6s")
	v.SetDefault("browser.settle_delay", "2s")

	v.SetDefault("cookies.path", filepath.Join(stateDir, "cookies.toml"))
	v.SetDefault("credentials.path", filepath.Join(stateDir, "credentials.toml"))

	v.SetDefault("secrets.backend", "chain")
	v.SetDefault("secrets.root", filepath.Join(stateDir, "secrets"))

	v.SetDefault("host.backend", "sqlite")
	v.SetDefault("host.flavor", "postgresql")
	v.SetDefault("host.path", filepath.Join(stateDir, "activities.db"))
	v.SetDefault("host.target", "apex_activities")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "apx")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
}

// Load reads ~/.apx/config.toml when present, applies APX_* environment
// overrides and expands ~ in every path setting.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	homedir.DisableCache = true
	home, err := homedir.Dir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	SetDefaults(v, home)
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(filepath.Join(home, Dir))
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	for _, path := range []*string{
		&cfg.Cookies.Path,
		&cfg.Credentials.Path,
		&cfg.Secrets.Root,
		&cfg.Host.Path,
		&cfg.Logger.LogFile,
	} {
		if *path == "" {
			continue
		}
		expanded, err := homedir.Expand(*path)
		if err != nil {
			return nil, fmt.Errorf("expand path %q: %w", *path, err)
		}
		*path = filepath.Clean(expanded)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Browser.Driver {
	case "chromedp", "playwright":
	default:
		return fmt.Errorf("browser.driver must be chromedp or playwright, got %q", c.Browser.Driver)
	}

	switch c.Host.Backend {
	case "postgres":
		if c.Host.DSN == "" {
			return errors.New("host.dsn is required for the postgres backend")
		}
		switch c.Host.Flavor {
		case "postgresql", "timescaledb":
		default:
			return fmt.Errorf("host.flavor must be postgresql or timescaledb, got %q", c.Host.Flavor)
		}
	case "sqlite", "yaml":
		if c.Host.Path == "" {
			return fmt.Errorf("host.path is required for the %s backend", c.Host.Backend)
		}
	default:
		return fmt.Errorf("host.backend must be postgres, sqlite or yaml, got %q", c.Host.Backend)
	}

	switch c.Secrets.Backend {
	case "chain", "pass", "file":
	default:
		return fmt.Errorf("secrets.backend must be chain, pass or file, got %q", c.Secrets.Backend)
	}

	if c.Browser.WaitTimeout <= 0 {
		return errors.New("browser.wait_timeout must be positive")
	}
	if c.Portal.RequestsPerSecond < 0 {
		return errors.New("portal.requests_per_second must not be negative")
	}
	if strings.TrimSpace(c.Host.Target) == "" {
		return errors.New("host.target is required")
	}

	return nil
}
