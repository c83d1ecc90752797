package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vpoint-tv/vpoint-api/config"
	"github.com/vpoint-tv/vpoint-api/utils"
)

var logLevel string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vpoint",
	Short: "VPoint admin API",
	Long:  `vpoint serves the VPoint viewer API and operator console, and manages its database.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "loglevel", "l", "", "Set log level. Available: debug, info, warn, error (default from LOG_LEVEL)")
}

// loadEnv reads .env and the environment, then configures logging
func loadEnv() (*config.EnviornmentVariable, error) {
	if err := config.LoadENV(); err != nil {
		return nil, err
	}

	env, err := config.Get()
	if err != nil {
		return nil, err
	}

	level := env.LOG_LEVEL
	if logLevel != "" {
		level = logLevel
	}
	utils.SetLogLevel(level)
	if env.GO_ENV == "production" {
		utils.UseJSON()
	}
	return env, nil
}
