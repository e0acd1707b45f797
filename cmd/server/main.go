package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "lbmovies",
		Short: "Browse movies and series, keep lists and follow friends",
		Long: "LBMovies serves a combined movie/series catalog backed by TMDB,\n" +
			"with favorites, watchlists, comments and a social feed.",
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file (default ./config.yaml if present)")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newProxyCmd(),
		newBrowseCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render(err.Error()))
		os.Exit(1)
	}
}
