package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tabloom-cli/internal/utils"
)

// Global configuration structure.
type Global struct {
	UserID       string `mapstructure:"user_id" yaml:"user_id"`
	DataDir      string `mapstructure:"data_dir" yaml:"data_dir"`
	SnapshotFile string `mapstructure:"snapshot_file" yaml:"snapshot_file"`
	AccountsFile string `mapstructure:"accounts_file" yaml:"accounts_file"`

	// Quota and payments
	FreeUploadLimit  int    `mapstructure:"free_upload_limit" yaml:"free_upload_limit"`
	PremiumDays      int    `mapstructure:"premium_days" yaml:"premium_days"`
	PaymentKeySecret string `mapstructure:"payment_key_secret" yaml:"payment_key_secret,omitempty"`

	// Analysis
	SampleRows        int `mapstructure:"sample_rows" yaml:"sample_rows"`
	SuggestSampleRows int `mapstructure:"suggest_sample_rows" yaml:"suggest_sample_rows"`

	// AI runtimes
	AIProvider   string  `mapstructure:"ai_provider" yaml:"ai_provider"`
	APIKey       string  `mapstructure:"api_key" yaml:"api_key,omitempty"`
	GeminiAPIKey string  `mapstructure:"gemini_api_key" yaml:"gemini_api_key,omitempty"`
	OllamaHost   string  `mapstructure:"ollama_host" yaml:"ollama_host"`
	DefaultModel string  `mapstructure:"default_model" yaml:"default_model"`
	MaxTokens    int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature  float64 `mapstructure:"temperature" yaml:"temperature"`
	ModelsFile   string  `mapstructure:"models_file" yaml:"models_file,omitempty"`

	HTTPTimeoutSec int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

var defaults = map[string]any{
	"user_id":             "local",
	"data_dir":            "",
	"snapshot_file":       "etl_processed_data.json",
	"accounts_file":       "accounts.json",
	"free_upload_limit":   1,
	"premium_days":        90,
	"payment_key_secret":  "",
	"sample_rows":         50,
	"suggest_sample_rows": 20,
	"ai_provider":         "openrouter",
	"api_key":             "",
	"gemini_api_key":      "",
	"ollama_host":         "http://127.0.0.1:11434",
	"default_model":       "",
	"max_tokens":          1024,
	"temperature":         0.7,
	"models_file":         "",
	"http_timeout_sec":    60,
	"log_level":           "info",
	"log_format":          "text",
}

// Keys lists the known configuration keys in sorted order.
func Keys() []string {
	out := make([]string, 0, len(defaults))
	for k := range defaults {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// IsKey reports whether key is a known configuration key.
func IsKey(key string) bool {
	_, ok := defaults[key]
	return ok
}

// Dir returns ~/.tabloom.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tabloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.tabloom/config.yaml.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("TABLOOM")
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	// Provider keys are also read from their conventional names.
	_ = v.BindEnv("api_key", "TABLOOM_API_KEY", "OPENROUTER_API_KEY")
	_ = v.BindEnv("gemini_api_key", "TABLOOM_GEMINI_API_KEY", "GEMINI_API_KEY")

	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.DataDir == "" {
		c.DataDir = dir
	}
	c.DataDir = utils.ExpandHome(c.DataDir)
	return &c, nil
}

// SnapshotPath resolves the snapshot slot path inside DataDir unless absolute.
func (c *Global) SnapshotPath() string { return c.resolve(c.SnapshotFile) }

// AccountsPath resolves the accounts file path inside DataDir unless absolute.
func (c *Global) AccountsPath() string { return c.resolve(c.AccountsFile) }

func (c *Global) resolve(p string) string {
	p = utils.ExpandHome(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

// ProviderKey returns the API key for the configured AI provider.
func (c *Global) ProviderKey() string {
	if strings.EqualFold(c.AIProvider, "gemini") {
		return c.GeminiAPIKey
	}
	return c.APIKey
}

// Set assigns a key from its string form, as given on the command line.
func (c *Global) Set(key, value string) error {
	if !IsKey(key) {
		return fmt.Errorf("unknown config key %q", key)
	}
	m := map[string]any{}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("unmarshal yaml: %w", err)
	}
	var typed any
	if err := yaml.Unmarshal([]byte(value), &typed); err != nil || typed == nil {
		typed = value
	}
	if _, isString := defaults[key].(string); isString {
		typed = value
	}
	m[key] = typed
	b, err = yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	var next Global
	if err := yaml.Unmarshal(b, &next); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*c = next
	return nil
}
