package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var (
	storageJSONOutput bool
	resetForce        bool
)

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Inspect and maintain stored tables",
	Long:  "List, reset, and reseed the stored tables without running the server.",
}

var storageTablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the stored tables",
	Args:  cobra.NoArgs,
	RunE:  runStorageTables,
}

var storageResetCmd = &cobra.Command{
	Use:   "reset [table...]",
	Short: "Drop stored tables",
	Long:  "Drop the named tables, or every table when none are named. Tables with sample data are reseeded on next use. Requires --force or interactive confirmation.",
	RunE:  runStorageReset,
}

var storageSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Reset every table and write the sample data",
	Args:  cobra.NoArgs,
	RunE:  runStorageSeed,
}

func init() {
	storageCmd.PersistentFlags().BoolVar(&storageJSONOutput, "json", false,
		"Output in JSON format")
	storageResetCmd.Flags().BoolVar(&resetForce, "force", false,
		"Skip confirmation prompt")

	storageCmd.AddCommand(storageTablesCmd)
	storageCmd.AddCommand(storageResetCmd)
	storageCmd.AddCommand(storageSeedCmd)
}

// printJSON marshals v to JSON and writes to the given writer.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runStorageTables(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	names := app.Tables.Names()
	if storageJSONOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{"tables": names})
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}

func runStorageReset(cmd *cobra.Command, args []string) error {
	if !resetForce {
		target := "all tables"
		if len(args) > 0 {
			target = strings.Join(args, ", ")
		}
		errOut := cmd.ErrOrStderr()
		fmt.Fprintf(errOut, "WARNING: This will permanently delete the stored data of %s.\n", target)
		fmt.Fprint(errOut, "Type 'reset' to confirm: ")

		reader := bufio.NewReader(cmd.InOrStdin())
		input, err := reader.ReadString('\n')
		if err != nil && input == "" {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if strings.TrimSpace(input) != "reset" {
			fmt.Fprintln(errOut, "Aborted.")
			return nil
		}
	}

	app, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	reset, err := app.Tables.Reset(cmd.Context(), args...)
	if err != nil {
		return err
	}
	if storageJSONOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{"reset": reset})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reset %s\n", strings.Join(reset, ", "))
	return nil
}

func runStorageSeed(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	seeded, err := app.Tables.Seed(cmd.Context())
	if err != nil {
		return err
	}
	if storageJSONOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{"seeded": seeded})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s\n", strings.Join(seeded, ", "))
	return nil
}
