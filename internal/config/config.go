// Package config holds the settings that drive a networth run.
//
// Values come from three layers, later layers winning:
//  1. Default()
//  2. an optional YAML file (config.yaml)
//  3. environment variables (ApplyEnv)
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const (
	BackendGoogle = "google"
	BackendXLSX   = "xlsx"
)

type Config struct {
	MoneyBrilliant MoneyBrilliantConfig `yaml:"moneybrilliant"`
	Spreadsheet    SpreadsheetConfig    `yaml:"spreadsheet"`
	Categories     []Category           `yaml:"categories"`
	Notifications  NotificationsConfig  `yaml:"notifications"`
}

// MoneyBrilliantConfig holds the aggregation service settings
type MoneyBrilliantConfig struct {
	BaseURL         string        `yaml:"base_url"`
	UserAgent       string        `yaml:"user_agent"`
	CredentialsFile string        `yaml:"credentials_file"`
	HTTPTimeout     time.Duration `yaml:"http_timeout"`
}

// SpreadsheetConfig selects the workbook backend and where the workbook lives
type SpreadsheetConfig struct {
	Backend         string `yaml:"backend"`
	Name            string `yaml:"name"`
	ID              string `yaml:"id"`
	CredentialsFile string `yaml:"credentials_file"`
	XLSXPath        string `yaml:"xlsx_path"`
	Timezone        string `yaml:"timezone"`
}

// Category maps an accounts endpoint to the worksheet its balances land in
type Category struct {
	Name      string `yaml:"name"`
	Path      string `yaml:"path"`
	Worksheet string `yaml:"worksheet"`
}

type NotificationsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"`
	Topic    string `yaml:"topic"`
	Priority string `yaml:"priority"`
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 6.3; WOW64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/46.0.2490.71 Safari/537.36"

// Default returns the configuration used when no file or env overrides exist.
func Default() *Config {
	return &Config{
		MoneyBrilliant: MoneyBrilliantConfig{
			BaseURL:         "https://api.moneybrilliant.com.au",
			UserAgent:       defaultUserAgent,
			CredentialsFile: "moneybrilliantcredentials.json",
		},
		Spreadsheet: SpreadsheetConfig{
			Backend:         BackendGoogle,
			Name:            "Networth",
			CredentialsFile: "drivecredentials.json",
			XLSXPath:        "Networth.xlsx",
			Timezone:        "Australia/Melbourne",
		},
		Categories: []Category{
			{Name: "bank", Path: "/api/v1/bank_accounts", Worksheet: "bank_accounts"},
			{Name: "credit", Path: "/api/v1/credit_card_accounts", Worksheet: "credit"},
			{Name: "investment", Path: "/api/v1/investment_accounts", Worksheet: "super"},
		},
		Notifications: NotificationsConfig{
			URL:   "https://ntfy.sh",
			Topic: "networth",
		},
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// ApplyEnv overrides settings from environment variables that are set and non-empty.
func (c *Config) ApplyEnv() {
	setFromEnv(&c.MoneyBrilliant.BaseURL, "MB_BASE_URL")
	setFromEnv(&c.MoneyBrilliant.CredentialsFile, "MB_CREDENTIALS_FILE")
	setFromEnv(&c.MoneyBrilliant.UserAgent, "MB_USER_AGENT")
	setFromEnv(&c.Spreadsheet.Backend, "SPREADSHEET_BACKEND")
	setFromEnv(&c.Spreadsheet.Name, "SPREADSHEET_NAME")
	setFromEnv(&c.Spreadsheet.ID, "SPREADSHEET_ID")
	setFromEnv(&c.Spreadsheet.CredentialsFile, "GOOGLE_CREDENTIALS_FILE")
	setFromEnv(&c.Spreadsheet.XLSXPath, "XLSX_PATH")
	setFromEnv(&c.Spreadsheet.Timezone, "SPREADSHEET_TIMEZONE")
	setFromEnv(&c.Notifications.URL, "NTFY_URL")
	setFromEnv(&c.Notifications.Topic, "NTFY_TOPIC")
	setFromEnv(&c.Notifications.Priority, "NTFY_PRIORITY")

	if v := os.Getenv("NTFY_ENABLED"); v != "" {
		c.Notifications.Enabled = strings.EqualFold(v, "true")
	}
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate reports the first setting that would make a run fail later on.
func (c *Config) Validate() error {
	if c.MoneyBrilliant.BaseURL == "" {
		return errors.New("moneybrilliant base_url is required")
	}

	switch c.Spreadsheet.Backend {
	case BackendGoogle:
		if c.Spreadsheet.Name == "" && c.Spreadsheet.ID == "" {
			return errors.New("spreadsheet name or id is required")
		}
	case BackendXLSX:
		if c.Spreadsheet.XLSXPath == "" {
			return errors.New("spreadsheet xlsx_path is required")
		}
	default:
		return fmt.Errorf("unknown spreadsheet backend %q", c.Spreadsheet.Backend)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	for _, cat := range c.Categories {
		if cat.Path == "" || cat.Worksheet == "" {
			return fmt.Errorf("category %q needs both path and worksheet", cat.Name)
		}
	}
	return nil
}

// Location resolves the timezone used for row timestamps.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Spreadsheet.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Spreadsheet.Timezone, err)
	}
	return loc, nil
}
