package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lessonforge/lessonforge/internal/qa"
	"github.com/lessonforge/lessonforge/internal/script"
)

// errChecksFailed turns a blocked render into a non-zero exit code.
var errChecksFailed = errors.New("validation failed")

var checkCmd = &cobra.Command{
	Use:   "check <script.json>",
	Short: "Validate a lesson script",
	Long: paragraph(
		fmt.Sprintf("\nRun every %s against a lesson script. The render is blocked while any check fails.", keyword("quality check")),
	),
	Example: paragraph("lessonforge check lessons/money-flow.json"),
	Args:    cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		doc, err := script.Load(args[0])
		if err != nil {
			return err
		}
		report := qa.Run(doc)
		printReport(doc, report)
		if !report.RenderAllowed() {
			fmt.Println(qa.Catalog())
			return errChecksFailed
		}
		return nil
	},
}

func printReport(doc *script.Document, report *qa.Report) {
	fmt.Printf("%s (%d scenes)\n\n", doc.Title, len(doc.Scenes))
	for _, nr := range report.Results {
		fmt.Printf("  %s %s\n", statusIcon(nr.Result.Status.String()), nr.Name)
		if nr.Result.Status != qa.Pass && nr.Result.Message != "" {
			fmt.Printf("      %s\n", faintStyle.Render(nr.Result.Message))
		}
	}
	fmt.Printf("\n  %d passed, %d warnings, %d failed\n\n", report.Passes, report.Warns, report.Fails)
}
