package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lessonforge/lessonforge/internal/pipeline"
	"github.com/lessonforge/lessonforge/internal/qa"
	"github.com/lessonforge/lessonforge/internal/script"
)

var skipChecks bool

var renderCmd = &cobra.Command{
	Use:   "render <script.json>",
	Short: "Render a lesson script to video",
	Long: paragraph(
		fmt.Sprintf("\nValidate the script, synthesize %s for every scene, and hand the timed scenes to the render engine.", keyword("narration")),
	),
	Example: paragraph("lessonforge render lessons/money-flow.json"),
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := script.Load(args[0])
		if err != nil {
			return err
		}

		if !skipChecks {
			report := qa.Run(doc)
			printReport(doc, report)
			if !report.RenderAllowed() {
				fmt.Println(qa.Catalog())
				return errChecksFailed
			}
		}

		return renderDocument(cmd, doc)
	},
}

func init() {
	renderCmd.Flags().BoolVar(&skipChecks, "skip-checks", false, "render even when validation would block")
}

// renderDocument runs the post-gate part of the render: synthesis, timing,
// and the render engine. Shared with the batch command.
func renderDocument(cmd *cobra.Command, doc *script.Document) error {
	client, err := newSynthClient()
	if err != nil {
		return err
	}
	audioCache, err := openCache()
	if err != nil {
		log.Warn("Audio cache unavailable, continuing without it", "err", err)
	}

	p := pipeline.New(pipeline.Config{
		FPS:      viper.GetInt("fps"),
		AudioDir: audioWorkDir(),
		Synth:    client,
		Cache:    audioCache,
	})
	in, err := p.ProcessScenes(cmd.Context(), doc)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir(), 0o755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	outputPath := filepath.Join(outputDir(), doc.Slug()+".mp4")

	log.Info("Rendering video", "output", outputPath, "frames", in.TotalDurationInFrames)
	if err := newRenderer().RenderVideo(in, outputPath); err != nil {
		return err
	}

	fmt.Println("Rendered:", outputPath)
	return nil
}
