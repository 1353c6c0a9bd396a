package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dailyecho/dailyecho/internal/config"
	"github.com/dailyecho/dailyecho/internal/gateway"
)

var rootCmd = &cobra.Command{
	Use:   "dailyecho",
	Short: "dailyecho - turn daily notes into social media posts",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bot (telegram polling + reminder scheduler)",
	RunE:  runBot,
}

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize config and data directory",
	RunE:  runOnboard,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show dailyecho status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(runCmd, onboardCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token not set. Run 'dailyecho onboard' or set DAILYECHO_TELEGRAM_TOKEN")
	}
	if cfg.Gemini.APIKey == "" {
		return fmt.Errorf("generation API key not set. Run 'dailyecho onboard' or set DAILYECHO_GEMINI_KEY")
	}

	gw, err := gateway.New(cfg)
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}

	return gw.Run(context.Background())
}

func runOnboard(cmd *cobra.Command, args []string) error {
	cfgDir := config.ConfigDir()
	cfgPath := config.ConfigPath()

	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg := config.DefaultConfig()
		data, _ := json.MarshalIndent(cfg, "", "  ")
		if err := os.WriteFile(cfgPath, data, 0644); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("Created config: %s\n", cfgPath)
	} else {
		fmt.Printf("Config already exists: %s\n", cfgPath)
	}

	if err := os.MkdirAll(filepath.Join(cfgDir, "data"), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Edit %s to set the telegram token and generation API key\n", cfgPath)
	fmt.Println("  2. Or set DAILYECHO_TELEGRAM_TOKEN and DAILYECHO_GEMINI_KEY environment variables")
	fmt.Println("  3. Run 'dailyecho run' to start the bot")

	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Config: error (%v)\n", err)
		return nil
	}

	fmt.Printf("Config: %s\n", config.ConfigPath())
	fmt.Printf("Version: %s\n", gateway.Version)
	fmt.Printf("Model: %s\n", cfg.Gemini.Model)
	fmt.Printf("Timezone: %s\n", cfg.Clock.Timezone)
	fmt.Printf("Telegram token: %s\n", maskKey(cfg.Telegram.Token))
	fmt.Printf("Generation key: %s\n", maskKey(cfg.Gemini.APIKey))
	fmt.Printf("Reminder: enabled=%v at=%s\n", cfg.Reminder.Enabled, cfg.Reminder.At)

	if _, err := os.Stat(cfg.DBPath()); err != nil {
		fmt.Printf("Store: %s (not created yet)\n", cfg.DBPath())
	} else {
		fmt.Printf("Store: %s\n", cfg.DBPath())
	}

	return nil
}

func maskKey(key string) string {
	if key == "" {
		return "not set"
	}
	if len(key) > 8 {
		return key[:4] + "..." + key[len(key)-4:]
	}
	return "set"
}
