package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/leofalp/intake/core/schema"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema extracted records must satisfy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(schema.IntakeV1.JSONSchema())
		},
	}
}
