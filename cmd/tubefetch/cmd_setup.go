package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/tubefetch/internal/config"
)

func init() {
	rootCmd.AddCommand(setupCmd)
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		scanner := bufio.NewScanner(os.Stdin)

		fmt.Println("tubefetch setup")
		fmt.Println("Press Enter to accept the default value shown in brackets.")
		fmt.Println()

		cfg.Telegram.Token = prompt(scanner, "Telegram bot token", cfg.Telegram.Token)
		cfg.DataDir = prompt(scanner, "Data directory", cfg.DataDir)
		cfg.Download.Binary = prompt(scanner, "yt-dlp binary", cfg.Download.Binary)

		maxMB := prompt(scanner, "Max upload size in MiB", strconv.FormatInt(cfg.Download.MaxBytes>>20, 10))
		if n, err := strconv.ParseInt(maxMB, 10, 64); err == nil && n > 0 {
			cfg.Download.MaxBytes = n << 20
		}

		height := prompt(scanner, "Max video height", strconv.Itoa(cfg.Download.VideoMaxHeight))
		if n, err := strconv.Atoi(height); err == nil {
			cfg.Download.VideoMaxHeight = n
		}

		conc := prompt(scanner, "Concurrent downloads", strconv.Itoa(cfg.MaxConcurrent))
		if n, err := strconv.Atoi(conc); err == nil && n >= 1 {
			cfg.MaxConcurrent = n
		}

		cfg.Session.Backend = prompt(scanner, "Session backend (memory|sqlite)", cfg.Session.Backend)

		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.Save(cfgPath, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Println()
		fmt.Println("Configuration saved to", cfgPath)
		return nil
	},
}

// prompt displays a labeled prompt with a default value and reads user input.
// If the user enters nothing, the default is returned.
func prompt(scanner *bufio.Scanner, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("%s: ", label)
	}
	if scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input != "" {
			return input
		}
	}
	return defaultVal
}
