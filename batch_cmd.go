package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lessonforge/lessonforge/internal/qa"
	"github.com/lessonforge/lessonforge/internal/script"
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Render every lesson script in a directory",
	Long: paragraph(
		fmt.Sprintf("\nRender all scripts in a directory, one after another. A failing script is %s and the batch moves on; the tally is printed at the end.", keyword("skipped")),
	),
	Example: paragraph("lessonforge batch lessons/"),
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scripts, err := filepath.Glob(filepath.Join(args[0], "*.json"))
		if err != nil {
			return fmt.Errorf("unable to list scripts: %w", err)
		}
		if len(scripts) == 0 {
			return fmt.Errorf("no scripts found in %s", args[0])
		}
		sort.Strings(scripts)

		rendered, failed := 0, 0
		for i, path := range scripts {
			log.Info("Rendering script", "index", i+1, "total", len(scripts), "path", path)
			if err := renderOne(cmd, path); err != nil {
				log.Error("Script failed", "path", path, "err", err)
				failed++
				continue
			}
			rendered++
		}

		fmt.Printf("\n%d rendered, %d failed of %d scripts\n", rendered, failed, len(scripts))
		if failed > 0 {
			return fmt.Errorf("%d of %d scripts failed", failed, len(scripts))
		}
		return nil
	},
}

// renderOne gates and renders a single script inside a batch.
func renderOne(cmd *cobra.Command, path string) error {
	doc, err := script.Load(path)
	if err != nil {
		return err
	}
	report := qa.Run(doc)
	if !report.RenderAllowed() {
		for _, nr := range report.Results {
			if nr.Result.Status == qa.Fail {
				log.Error("Check failed", "check", nr.Name, "detail", nr.Result.Message)
			}
		}
		return errChecksFailed
	}
	return renderDocument(cmd, doc)
}
