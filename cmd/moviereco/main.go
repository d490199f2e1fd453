package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/config"
	"github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/version"
)

var (
	envName    string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:           "moviereco",
	Short:         "Movie recommendation backend",
	Long:          "moviereco answers free-text movie queries with catalog matches and an LLM recommendation.",
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", config.GetEnv(), "environment name (selects config/<env>.yaml)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "explicit config file path")
	rootCmd.AddCommand(serveCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
