package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
)

// CommandRenderer drives an external render engine binary. The input payload
// goes in as JSON on stdin; the binary writes the artifact to the path given
// on its command line.
type CommandRenderer struct {
	// Binary is the render engine executable.
	Binary string

	// Timeout bounds a single render; zero means no bound.
	Timeout time.Duration
}

// NewCommandRenderer creates a renderer around the given binary.
func NewCommandRenderer(binary string, timeout time.Duration) *CommandRenderer {
	return &CommandRenderer{Binary: binary, Timeout: timeout}
}

func (r *CommandRenderer) run(in *Input, args []string) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("unable to encode render input: %w", err)
	}

	ctx := context.Background()
	cancel := func() {}
	if r.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
	}
	defer cancel()

	log.Debug("Running render engine", "binary", r.Binary, "args", args)
	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Stdin = bytes.NewReader(payload)

	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("render timed out after %s", r.Timeout)
	}
	if err != nil {
		return fmt.Errorf("render engine failed: %w: %s", err, bytes.TrimSpace(out))
	}
	return nil
}

// RenderVideo renders the full composition to outputPath.
func (r *CommandRenderer) RenderVideo(in *Input, outputPath string) error {
	return r.run(in, []string{"render", "--output", outputPath})
}

// RenderStill renders a single frame to outputPath.
func (r *CommandRenderer) RenderStill(in *Input, frame int, outputPath string) error {
	return r.run(in, []string{"still", "--frame", strconv.Itoa(frame), "--output", outputPath})
}
