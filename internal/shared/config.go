package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Accounts map[string]AccountConfig `toml:"accounts"`
	Database DatabaseConfig           `toml:"database"`
	API      APIConfig                `toml:"api"`
}

// AccountConfig contains the Reddit script-app credentials for one account.
//
// The password is passed to the token endpoint and never persisted anywhere
// else; accounts with two-factor auth append the current code to the password
// as "password:123456".
type AccountConfig struct {
	Username     string `toml:"username"`
	Password     string `toml:"password"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// DatabaseConfig contains run-history database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// APIConfig contains settings applied to every Reddit session.
type APIConfig struct {
	UserAgent string  `toml:"user_agent"`
	RateLimit float64 `toml:"rate_limit"` // requests per second
	PageLimit int     `toml:"page_limit"` // items per listing page
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Account returns the credentials for the named account as the map consumed
// by [services.Session.Authenticate]. The name is matched against the section
// key, falling back to the section's username.
func (c *Config) Account(name string) (map[string]string, error) {
	acct, ok := c.Accounts[name]
	if !ok {
		for _, a := range c.Accounts {
			if a.Username == name {
				acct = a
				ok = true
				break
			}
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, name)
	}

	username := acct.Username
	if username == "" {
		username = name
	}

	creds := map[string]string{
		"username":      username,
		"password":      acct.Password,
		"client_id":     acct.ClientID,
		"client_secret": acct.ClientSecret,
	}
	if c.API.UserAgent != "" {
		creds["user_agent"] = c.API.UserAgent
	}
	if c.API.RateLimit > 0 {
		creds["rate_limit"] = fmt.Sprintf("%g", c.API.RateLimit)
	}
	if c.API.PageLimit > 0 {
		creds["page_limit"] = fmt.Sprintf("%d", c.API.PageLimit)
	}
	return creds, nil
}
