package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/JonMunkholm/tableform/internal/tableform"
	"github.com/spf13/cobra"
)

// openInput opens path, or stdin for "-".
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	return os.Open(path)
}

func htmlOptions(tableID string) []tableform.HTMLOption {
	if tableID == "" {
		return nil
	}
	return []tableform.HTMLOption{tableform.WithTableID(tableID)}
}

type columnInfo struct {
	Key       string         `json:"key"`
	Kind      tableform.Kind `json:"kind"`
	Validator string         `json:"validator,omitempty"`
}

func newSchemaCmd() *cobra.Command {
	var tableID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "schema <file.html|->",
		Short: "Print the columns read from an annotated table header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			schema, rows, err := tableform.ReadHTML(in, htmlOptions(tableID)...)
			if err != nil {
				return err
			}

			cols := make([]columnInfo, 0, schema.Len())
			for _, c := range schema.Columns() {
				cols = append(cols, columnInfo{Key: c.Key, Kind: c.Kind, Validator: c.ValidatorName()})
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(cols)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tKIND\tVALIDATOR")
			for _, c := range cols {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Key, c.Kind, c.Validator)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "%d rows\n", len(rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&tableID, "table", "", "id of the table element (default: first table)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newExportCmd() *cobra.Command {
	var tableID string

	cmd := &cobra.Command{
		Use:   "export <file.html|->",
		Short: "Print the output field value of an annotated table",
		Long: `Reads the rows of an annotated table and prints the JSON array a
submit of the unchanged table would store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			table, err := tableform.LoadHTML(in, htmlOptions(tableID)...)
			if err != nil {
				return err
			}
			data, err := table.Export()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().StringVar(&tableID, "table", "", "id of the table element (default: first table)")
	return cmd
}
