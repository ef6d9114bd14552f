package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/tableform/internal/config"
	"github.com/JonMunkholm/tableform/internal/core"
	"github.com/JonMunkholm/tableform/internal/core/forms"
	"github.com/JonMunkholm/tableform/internal/storage"
	"github.com/JonMunkholm/tableform/internal/tableform"
	"github.com/spf13/cobra"
)

var errInvalidValue = errors.New("invalid value")

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <validator> <value>",
		Short: "Check a value against a named validator",
		Long:  "Validators: " + strings.Join(tableform.ValidatorNames(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, ok := tableform.LookupValidator(args[0])
			if !ok {
				return fmt.Errorf("unknown validator %q", args[0])
			}
			if !v.Valid(args[1]) {
				return fmt.Errorf("%w for %s: %q", errInvalidValue, v.Name, args[1])
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return err
		},
	}
}

// loadForms registers the forms of file, when given.
func loadForms(file string) error {
	if file == "" {
		return nil
	}
	_, err := forms.LoadFile(file)
	return err
}

func newFormsCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "forms",
		Short: "List the registered forms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadForms(file); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tSTORAGE KEY\tCOLUMNS\tLABEL")
			for _, def := range core.All() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					def.Info.Key, def.Info.StorageKey, strings.Join(def.Schema().Keys(), ","), def.Info.Label)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "form definitions file to load")
	return cmd
}

// openStore connects to the storage backend configured in the environment.
func openStore(ctx context.Context, migrate bool) (storage.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return storage.Open(ctx, storage.Options{
		Driver:          cfg.Storage.Driver,
		URL:             cfg.Storage.URL,
		MaxConns:        cfg.Storage.MaxConns,
		MinConns:        cfg.Storage.MinConns,
		MaxConnLifetime: cfg.Storage.MaxConnLifetime,
		MaxConnIdleTime: cfg.Storage.MaxConnIdleTime,
		Path:            cfg.Storage.SQLitePath,
		Migrate:         migrate || cfg.Storage.Migrate,
	})
}

func newValueCmd() *cobra.Command {
	var file string
	var rows bool

	cmd := &cobra.Command{
		Use:   "value <form>",
		Short: "Print the stored output field value of a form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadForms(file); err != nil {
				return err
			}
			ctx := cmd.Context()
			store, err := openStore(ctx, false)
			if err != nil {
				return err
			}
			defer store.Close()

			service := core.NewService(store, core.Options{})
			value, err := service.StoredValue(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !rows {
				_, err = fmt.Fprintln(out, value)
				return err
			}

			def, err := service.Form(args[0])
			if err != nil {
				return err
			}
			decoded, err := core.DecodeStored(def.Schema(), value)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(decoded)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "form definitions file to load")
	cmd.Flags().BoolVar(&rows, "rows", false, "print the decoded rows instead of the raw value")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the storage schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context(), true)
			if err != nil {
				return err
			}
			if err := store.Close(); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return err
		},
	}
}
