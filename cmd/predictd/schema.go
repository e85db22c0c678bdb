package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mind-engage/income-predictor/internal/features"
	"github.com/mind-engage/income-predictor/internal/storage"
)

func (a *app) schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the feature schema columns, one per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSchema()
			if err != nil {
				return err
			}
			for _, c := range s.Columns() {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}

func (a *app) loadSchema() (*features.Schema, error) {
	if a.cfg.SchemaKey == "" {
		return features.DefaultSchema(), nil
	}
	store, err := storage.NewFSStore(a.cfg.ArtifactDir)
	if err != nil {
		return nil, err
	}
	rc, err := store.Open(a.cfg.SchemaKey)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return features.LoadSchemaCSV(rc, a.cfg.SchemaKey)
}
