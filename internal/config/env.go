package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the application.
// Note: SessionSecret seals the session cookie; when empty a random key is used and sessions do not survive restarts
type Config struct {
	Port                string        `envconfig:"PORT" default:"8080"`
	APIBase             string        `envconfig:"API_BASE" required:"true"`
	HTTPTimeout         time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`
	SessionSecret       string        `envconfig:"SESSION_SECRET"`
	SessionCookieSecure bool          `envconfig:"SESSION_COOKIE_SECURE" default:"false"`
	IPFSGateway         string        `envconfig:"IPFS_GATEWAY" default:"https://gateway.pinata.cloud/"`
	NativeCurrency      string        `envconfig:"NATIVE_CURRENCY" default:"MATIC"`
	BalanceTTL          time.Duration `envconfig:"BALANCE_TTL" default:"30m"`
	LogLevel            string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat           string        `envconfig:"LOG_FORMAT" default:"console"`
	TokenFile           string        `envconfig:"TOKEN_FILE"`
	RedisURL            string        `envconfig:"REDIS_URL"`
	LoginRatePerMinute  int           `envconfig:"LOGIN_RATE_PER_MINUTE" default:"10"`
	LoginBurst          int           `envconfig:"LOGIN_BURST" default:"5"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads an optional .env file and then configuration from environment variables.
// Variables already present in the environment win over the .env file.
func Init(envFiles ...string) error {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load env file: %w", err)
	}

	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	if err := c.validate(); err != nil {
		return err
	}
	cfg = c
	return nil
}

func (c *Config) validate() error {
	c.APIBase = strings.TrimRight(c.APIBase, "/")
	if !strings.HasPrefix(c.APIBase, "http://") && !strings.HasPrefix(c.APIBase, "https://") {
		return fmt.Errorf("API_BASE must be an http(s) URL, got %q", c.APIBase)
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("HTTP_TIMEOUT must be positive")
	}
	if c.BalanceTTL <= 0 {
		return errors.New("BALANCE_TTL must be positive")
	}
	if c.LoginRatePerMinute <= 0 || c.LoginBurst <= 0 {
		return errors.New("LOGIN_RATE_PER_MINUTE and LOGIN_BURST must be positive")
	}
	if !strings.HasSuffix(c.IPFSGateway, "/") {
		c.IPFSGateway += "/"
	}
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// Set replaces the global configuration. Used by tests and by commands that build config from flags.
func Set(c *Config) {
	cfg = c
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetAPIURL returns the backend API root, API_BASE + "/api"
func GetAPIURL() string {
	return Get().APIBase + "/api"
}

// GetTokenFile returns the path of the terminal client's token file.
// Defaults to <user config dir>/walletdash/token.
func GetTokenFile() (string, error) {
	if p := Get().TokenFile; p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config dir: %w", err)
	}
	return filepath.Join(dir, "walletdash", "token"), nil
}

// PromptForPassword prompts the user for a password in the terminal.
// The password is read without echoing (hidden input).
// Caller must zero the returned slice after use.
func PromptForPassword(prompt string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run the command interactively to enter password")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}

	out := make([]byte, len(raw))
	copy(out, raw)
	clear(raw)
	return out, nil
}
