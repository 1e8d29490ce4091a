package cmd

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/seaswell/rollcall/internal/config"
)

var serverCmd = &cobra.Command{
	Use:   "server [url]",
	Short: "Show or persist the registration server URL",
	Long:  `Without an argument, prints the server URL currently in effect. With one, validates it and writes it to the config file, keeping existing comments intact.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		cmd.Println(cfg.ServerURL)
		return nil
	}

	raw := args[0]
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid server URL %q: expected something like http://host:port", raw)
	}

	configPath := viper.ConfigFileUsed()
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	if err := config.SaveServerURL(configPath, raw); err != nil {
		return fmt.Errorf("saving server URL: %w", err)
	}
	cmd.Printf("Server URL set to %s\n", raw)
	return nil
}
