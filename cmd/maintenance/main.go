package main

// Destructive maintenance CLI. Lists stored files and wipes all files plus
// the entire key-value namespace. Not for production environments.

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"resumind/internal/bootstrap"
	"resumind/internal/shared/config"
)

const (
	promptYes = "Yes, delete everything"
	promptNo  = "No"
)

var yes bool

var rootCmd = &cobra.Command{
	Use:   "maintenance",
	Short: "Inspect and wipe stored application data",
}

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List every stored file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := buildReadyApp(cmd.Context())
		if err != nil {
			return err
		}
		entries, err := app.MaintenanceService.Files(cmd.Context())
		if err != nil {
			return err
		}
		for _, entry := range entries {
			fmt.Printf("%10d  %s\n", entry.SizeBytes, entry.Path)
		}
		fmt.Printf("%d files\n", len(entries))
		return nil
	},
}

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete all stored files and flush the entire key-value namespace",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !yes {
			confirm := promptui.Select{
				Label: "This deletes every file and EVERY key-value entry. Proceed?",
				Items: []string{promptNo, promptYes},
			}
			_, choice, err := confirm.Run()
			if err != nil {
				return err
			}
			if choice != promptYes {
				fmt.Println("aborted")
				return nil
			}
		}

		app, err := buildReadyApp(cmd.Context())
		if err != nil {
			return err
		}
		result, err := app.MaintenanceService.Wipe(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("deleted %d files, key-value namespace flushed\n", result.FilesDeleted)
		return nil
	},
}

func buildReadyApp(ctx context.Context) (*bootstrap.App, error) {
	app, err := bootstrap.Build(config.Load())
	if err != nil {
		return nil, err
	}
	if err := app.WaitReady(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

func init() {
	wipeCmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(filesCmd, wipeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.SetFlags(0)
		log.Println(err)
		os.Exit(1)
	}
}
