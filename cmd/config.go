package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/tabloom-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set TabLoom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		fmt.Printf("user_id: %s\n", c.UserID)
		fmt.Printf("data_dir: %s\n", c.DataDir)
		fmt.Printf("snapshot_file: %s\n", c.SnapshotPath())
		fmt.Printf("accounts_file: %s\n", c.AccountsPath())
		fmt.Printf("free_upload_limit: %d\n", c.FreeUploadLimit)
		fmt.Printf("premium_days: %d\n", c.PremiumDays)
		fmt.Printf("payment_key_secret: %s\n", mask(c.PaymentKeySecret))
		fmt.Printf("sample_rows: %d\n", c.SampleRows)
		fmt.Printf("suggest_sample_rows: %d\n", c.SuggestSampleRows)
		fmt.Printf("ai_provider: %s\n", c.AIProvider)
		fmt.Printf("api_key: %s\n", mask(c.APIKey))
		fmt.Printf("gemini_api_key: %s\n", mask(c.GeminiAPIKey))
		if c.AIProvider == ai.ProviderOllama {
			fmt.Printf("ollama_host: %s\n", c.OllamaHost)
		}
		model := c.DefaultModel
		if model == "" {
			model = ai.DefaultModel(c.AIProvider) + " (provider default)"
		}
		fmt.Printf("default_model: %s\n", model)
		fmt.Printf("max_tokens: %d\n", c.MaxTokens)
		fmt.Printf("temperature: %.3f\n", c.Temperature)
		fmt.Printf("http_timeout_sec: %d\n", c.HTTPTimeoutSec)
		fmt.Printf("log_level: %s\n", c.LogLevel)
		fmt.Printf("log_format: %s\n", c.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long:  "Set a config value and save to disk. Known keys: " + strings.Join(cfgpkg.Keys(), ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := requireConfig()
		if err != nil {
			return err
		}
		switch key {
		case "ai_provider":
			val = strings.ToLower(strings.TrimSpace(val))
			if val == "local" {
				val = ai.ProviderOllama
			}
			if _, ok := ai.GetRuntime(val, ai.RuntimeConfig{}); !ok {
				return fmt.Errorf("invalid ai_provider: %s (use %s)", args[1], strings.Join(ai.Providers(), ", "))
			}
		case "log_format":
			if val != "text" && val != "json" {
				return fmt.Errorf("invalid log_format: %s (use text or json)", val)
			}
		}
		if err := c.Set(key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Println("✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
