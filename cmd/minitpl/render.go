package main

import (
	"fmt"
	"io"

	"github.com/minihttp/minitpl/pkg/minitpl/model"
	"github.com/spf13/cobra"
)

func newRenderCmd(a *app) *cobra.Command {
	var dataPath, outPath string

	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Render a template file with a JSON or YAML model",
		Long: `Render a template file with a JSON or YAML model.

Examples:
  # Render to stdout
  minitpl render views/profile.html -d profile.yaml

  # Read the model from stdin
  cat profile.json | minitpl render views/profile.html -d -

  # Write the result atomically to a file
  minitpl render views/profile.html -d profile.yaml -o public/profile.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadModel(dataPath, cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("loading model: %w", err)
			}

			if outPath != "" {
				if err := a.engine.RenderToFile(args[0], outPath, data); err != nil {
					return err
				}
				a.log.WithField("template", args[0]).Info("wrote %s", outPath)
				return nil
			}

			out, err := a.engine.RenderFileContext(cmd.Context(), args[0], data)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "model file (.json or .yaml); - reads it from stdin")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the result to this file instead of stdout")
	return cmd
}

// loadModel reads the model named by path. An empty path means no model.
// Stdin is decoded as YAML, which also accepts JSON.
func loadModel(path string, stdin io.Reader) (any, error) {
	switch path {
	case "":
		return nil, nil
	case "-":
		return model.Read(stdin, model.FormatYAML)
	default:
		return model.LoadFile(path)
	}
}
