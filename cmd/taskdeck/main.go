package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "taskdeck",
	Short: "taskdeck - personal task tracking",
	Long: `taskdeck tracks your tasks from the terminal: create, complete, star,
and categorize items, search and filter your list, and view aggregate
statistics. State lives in a local database by default, or mirrors a
remote backend when --api is set.`,
	SilenceUsage: true,
	// No RunE - defaults to showing help when no subcommand is provided
}

var (
	apiAddr string
	dbPath  string
)

func init() {
	homeDir, _ := os.UserHomeDir()
	defaultDB := filepath.Join(homeDir, ".taskdeck", "taskdeck.db")

	rootCmd.PersistentFlags().StringVar(&apiAddr, "api", "", "Remote API address (empty = local storage)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "Path to the local database")

	rootCmd.AddCommand(addCmd, listCmd, showCmd, doneCmd, starCmd, priorityCmd,
		editCmd, rmCmd, statsCmd, exportCmd)
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tuiCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
