package main

import (
	"fmt"
	"os"

	"github.com/minihttp/minitpl/pkg/minitpl"
	"github.com/spf13/cobra"
)

func newRefsCmd(a *app) *cobra.Command {
	var (
		all        bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "refs <template>",
		Short: "List the model paths a template reads",
		Long: `List the model paths a template reads.

By default the distinct paths are printed one per line. --all prints every
reference with its position and kind.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return &minitpl.TemplateFileError{Op: "read", Path: args[0], Err: err}
			}
			result, err := minitpl.ExtractReferences(minitpl.ExtractReferencesInput{
				Source: string(src),
				Name:   args[0],
			})
			if err != nil {
				return err
			}
			a.log.Debug("%s: %d references", args[0], len(result.References))

			out := cmd.OutOrStdout()
			switch {
			case jsonOutput:
				return writeJSON(out, result)
			case all:
				for _, ref := range result.References {
					if _, err := fmt.Fprintf(out, "%d:%d\t%s\t%s\n",
						ref.Location.Line, ref.Location.Column, ref.Kind, ref.Expression); err != nil {
						return err
					}
				}
			default:
				for _, path := range result.UsedPaths() {
					if _, err := fmt.Fprintln(out, path); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "print every reference with its position")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print references as JSON")
	return cmd
}
