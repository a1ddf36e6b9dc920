package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lessonforge/lessonforge/internal/pipeline"
	"github.com/lessonforge/lessonforge/internal/script"
)

var watchScript bool

var previewCmd = &cobra.Command{
	Use:   "preview <script.json> [scene]",
	Short: "Render a single still frame without synthesizing",
	Long: paragraph(
		fmt.Sprintf("\nRender one frame of a scene using only %s audio. Uncached scenes get a placeholder duration, so previews are free and fast.", keyword("cached")),
	),
	Example: paragraph("lessonforge preview lessons/money-flow.json 2\nlessonforge preview lessons/money-flow.json --watch"),
	Args:    cobra.RangeArgs(1, 2),
	RunE: func(_ *cobra.Command, args []string) error {
		targetScene := 1
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("scene must be a number: %q", args[1])
			}
			targetScene = n
		}

		if err := previewOnce(args[0], targetScene); err != nil {
			if !watchScript {
				return err
			}
			log.Error("Preview failed", "err", err)
		}
		if !watchScript {
			return nil
		}
		return watchAndPreview(args[0], targetScene)
	},
}

func init() {
	previewCmd.Flags().BoolVarP(&watchScript, "watch", "w", false, "re-render the preview when the script changes")
}

func previewOnce(scriptPath string, targetScene int) error {
	doc, err := script.Load(scriptPath)
	if err != nil {
		return err
	}

	audioCache, err := openCache()
	if err != nil {
		log.Warn("Audio cache unavailable, all scenes get placeholder durations", "err", err)
	}

	p := pipeline.New(pipeline.Config{
		FPS:      viper.GetInt("fps"),
		AudioDir: audioWorkDir(),
		Cache:    audioCache,
	})
	in, placeholders, err := p.ProcessScenesFromCache(doc)
	if err != nil {
		return err
	}
	if placeholders > 0 {
		log.Info("Scenes without cached audio use placeholder timing", "count", placeholders)
	}

	frame := pipeline.CaptureFrame(in, targetScene)
	if err := os.MkdirAll(outputDir(), 0o755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	outputPath := filepath.Join(outputDir(), doc.Slug()+"-preview.png")

	if err := newRenderer().RenderStill(in, frame, outputPath); err != nil {
		return err
	}
	fmt.Println("Preview:", outputPath)
	return nil
}

// watchAndPreview re-renders the preview whenever the script file changes.
// Editors replace files on save, so the parent directory is watched and
// events are filtered by name.
func watchAndPreview(scriptPath string, targetScene int) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unable to create watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	abs, err := filepath.Abs(scriptPath)
	if err != nil {
		return fmt.Errorf("unable to resolve script path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("unable to watch script directory: %w", err)
	}

	log.Info("Watching for changes", "path", scriptPath)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			log.Info("Script changed, re-rendering preview")
			if err := previewOnce(scriptPath, targetScene); err != nil {
				log.Error("Preview failed", "err", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("Watcher error", "err", err)
		}
	}
}
