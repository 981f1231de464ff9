package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sdl3gen/internal/driver"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the generation cache",
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Forget every recorded generation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cache, err := driver.OpenGenCache("sdl3gen")
		if err != nil {
			return err
		}
		if err := cache.DropAll(); err != nil {
			return fmt.Errorf("failed to clear %s: %w", cache.Dir(), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", cache.Dir())
		return nil
	},
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the cache directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cache, err := driver.OpenGenCache("sdl3gen")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cache.Dir())
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheCleanCmd, cachePathCmd)
}
