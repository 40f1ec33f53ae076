package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "zoetrope",
	Short: "Zoetrope - personal watch-list and recommendation carousel",
	Long: `Zoetrope collects the movies, shows and books you want to watch,
ranks them into a carousel of what matters now and serves them over HTTP.

Configuration comes from environment variables and an optional .env file;
flags override both.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config-dir", "", "directory holding the database and blocklist (default ~/.config/zoetrope)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text or json)")
	rootCmd.PersistentFlags().String("store", "", "store driver (bolt or sqlite)")

	bindFlag(rootCmd, "CONFIG_DIR", "config-dir")
	bindFlag(rootCmd, "LOG_LEVEL", "log-level")
	bindFlag(rootCmd, "LOG_FORMAT", "log-format")
	bindFlag(rootCmd, "STORE_DRIVER", "store")

	rootCmd.AddCommand(serveCmd, carouselCmd, listCmd, inboxCmd)
}

// bindFlag lets a persistent flag override its environment key
func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
