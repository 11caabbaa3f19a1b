package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

const defaultAPIBaseURL = "http://localhost:8000/api/"

// Config holds the client configuration, loadable from environment variables
// (BOOKVERSE_ prefix), global flags, or YAML config files.
type Config struct {
	APIBaseURL   string        `default:"http://localhost:8000/api/" usage:"Bookverse API root" env:"API_BASE_URL" flag:"api" yaml:"api_base_url"`
	ImageBaseURL string        `default:"" usage:"Base URL for relative book image paths" env:"IMAGE_BASE_URL" flag:"image-base-url" yaml:"image_base_url"`
	TokenFile    string        `default:"" usage:"Where login tokens are kept (defaults to the user config dir)" env:"TOKEN_FILE" flag:"token-file" yaml:"token_file"`
	Timeout      time.Duration `default:"30s" usage:"Per-request timeout, 0 disables" env:"TIMEOUT" flag:"timeout" yaml:"timeout"`
	Debug        bool          `default:"false" usage:"Print the effects of each command" env:"DEBUG" flag:"debug" yaml:"debug"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files and the global flags at the front of args. It returns the remaining
// arguments, starting with the command name.
func LoadConfig(args []string) (*Config, []string, error) {
	var cfg Config
	files := []string{"bookverse.yaml"}
	if dir, err := os.UserConfigDir(); err == nil {
		files = append(files, filepath.Join(dir, "bookverse", "config.yaml"))
	}

	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "BOOKVERSE",
		Files:     files,
		Args:      args,
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, nil, errors.Wrap(err, "load config")
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, nil, err
	}

	return &cfg, loader.Flags().Args(), nil
}

// applyDefaults fills values that depend on the environment: the plain
// API_BASE_URL variable used by the backend's own tooling and the token file
// location.
func (c *Config) applyDefaults() error {
	if c.APIBaseURL == defaultAPIBaseURL {
		if v := os.Getenv("API_BASE_URL"); v != "" {
			c.APIBaseURL = v
		}
	}
	if c.APIBaseURL == "" {
		return errors.New("API base URL is required: set BOOKVERSE_API_BASE_URL")
	}
	if c.TokenFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return errors.Wrap(err, "locate config dir: set BOOKVERSE_TOKEN_FILE")
		}
		c.TokenFile = filepath.Join(dir, "bookverse", "tokens.json")
	}
	return nil
}
