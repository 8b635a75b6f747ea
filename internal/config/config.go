package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfighcl"
)

type Config struct {
	AppID    string `hcl:"app_id" env:"APP_ID"`
	AppKey   string `hcl:"app_key" env:"APP_KEY"`
	Username string `hcl:"username" env:"USERNAME"`
	Password string `hcl:"password" env:"PASSWORD"`

	BaseURL string `hcl:"base_url" env:"BASE_URL" default:"https://www.inoreader.com/reader/api/0"`
	AuthURL string `hcl:"auth_url" env:"AUTH_URL" default:"https://www.inoreader.com/accounts/ClientLogin"`

	TimeoutSeconds  int `hcl:"timeout" env:"TIMEOUT" default:"10"`
	CacheTTLSeconds int `hcl:"cache_ttl" env:"CACHE_TTL" default:"300"`
	MaxArticles     int `hcl:"max_articles" env:"MAX_ARTICLES" default:"50"`
}

func (c Config) Timeout() time.Duration  { return time.Duration(c.TimeoutSeconds) * time.Second }
func (c Config) CacheTTL() time.Duration { return time.Duration(c.CacheTTLSeconds) * time.Second }

// ConfigError reports startup configuration problems. Missing lists every
// required setting that is absent, not just the first one found.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return "missing required settings: " + strings.Join(e.Missing, ", ")
}

// Load reads settings from the environment (INOREADER_ prefix) and the given
// optional HCL files. Missing files are skipped; a missing required value is
// fatal and reported via *ConfigError.
func Load(files ...string) (Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "INOREADER",
		SkipFlags: true,
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".hcl": aconfighcl.New(),
		},
	})

	if err := loader.Load(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"INOREADER_APP_ID", c.AppID},
		{"INOREADER_APP_KEY", c.AppKey},
		{"INOREADER_USERNAME", c.Username},
		{"INOREADER_PASSWORD", c.Password},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}

	if len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}

	return nil
}
