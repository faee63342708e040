package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/minihttp/minitpl/pkg/minitpl"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
)

func newCheckCmd(a *app) *cobra.Command {
	var (
		maxIssues  int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "check <pattern>...",
		Short: "Validate template syntax",
		Long: `Validate template syntax and block balance.

Patterns may use ** to match any number of directories. The command fails
when any template has an error; warnings (text that looks like a directive
but renders literally) are reported without failing.

Examples:
  minitpl check views/index.html
  minitpl check 'views/**/*.html' --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandPatterns(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no templates match %s", strings.Join(args, " "))
			}

			results := make([]minitpl.ValidateResult, 0, len(files))
			invalid := 0
			for _, file := range files {
				src, err := os.ReadFile(file)
				if err != nil {
					return &minitpl.TemplateFileError{Op: "read", Path: file, Err: err}
				}
				result, err := minitpl.Validate(minitpl.ValidateInput{
					Source:    string(src),
					Name:      file,
					MaxIssues: maxIssues,
				})
				if err != nil {
					return err
				}
				if !result.Valid {
					invalid++
				}
				results = append(results, result)
			}
			a.log.Debug("checked %d templates, %d invalid", len(files), invalid)

			out := cmd.OutOrStdout()
			if jsonOutput {
				err = writeJSON(out, results)
			} else {
				err = printResults(out, results, invalid)
			}
			if err != nil {
				return err
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d templates invalid", invalid, len(files))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxIssues, "max-issues", 0, "maximum issues reported per template (0 = all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	return cmd
}

// expandPatterns resolves glob patterns to a sorted list of distinct files.
func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	files := make([]string, 0)
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func printResults(w io.Writer, results []minitpl.ValidateResult, invalid int) error {
	for _, result := range results {
		for _, issue := range result.Issues {
			loc := issue.Token.Location
			if _, err := fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
				result.Metadata.Name, loc.Line, loc.Column,
				issue.Severity, issue.Code, issue.Message); err != nil {
				return err
			}
		}
		if result.IssuesTruncated {
			hidden := result.Summary.ErrorCount + result.Summary.WarningCount - result.Summary.ReturnedIssueCount
			if _, err := fmt.Fprintf(w, "%s: %d more issues not shown\n", result.Metadata.Name, hidden); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "%d templates checked, %d invalid\n", len(results), invalid)
	return err
}

func writeJSON(w io.Writer, v any) error {
	out, err := oj.Marshal(v, &oj.Options{Indent: 2, UseTags: true, KeyExact: true})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
