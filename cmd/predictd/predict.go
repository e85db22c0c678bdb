package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mind-engage/income-predictor/internal/features"
	"github.com/mind-engage/income-predictor/internal/predict"
	"github.com/mind-engage/income-predictor/internal/storage"
)

func (a *app) predictCmd() *cobra.Command {
	var recordPath string
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict one record read from a JSON file",
		Example: `  predictd predict --record person.json
  echo '{"age":39,...}' | predictd predict --record -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if recordPath == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(recordPath)
			}
			if err != nil {
				return fmt.Errorf("read record: %w", err)
			}
			rec, err := features.RecordFromJSON(data)
			if err != nil {
				var verr *features.ValidationError
				if errors.As(err, &verr) {
					for _, f := range verr.Fields {
						fmt.Fprintln(cmd.ErrOrStderr(), f.String())
					}
				}
				return err
			}
			store, err := storage.NewFSStore(a.cfg.ArtifactDir)
			if err != nil {
				return err
			}
			p, err := predict.Load(cmd.Context(), store, a.sources(), a.log)
			if err != nil {
				return err
			}
			res, err := p.Predict(cmd.Context(), rec)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "prediction: %d\n", res.Label)
			if res.Probability != nil {
				fmt.Fprintf(out, "probability: %.4f\n", *res.Probability)
			}
			for _, c := range res.DroppedColumns {
				fmt.Fprintf(out, "dropped: %s\n", c)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&recordPath, "record", "r", "", "JSON record file, - for stdin")
	_ = cmd.MarkFlagRequired("record")
	return cmd
}
