package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ekg/phonon-sub005/internal/render"
	"github.com/spf13/cobra"
)

// newRenderCmd wires `phonon render <source> <out.wav> --cycles N`
// (spec.md §6.3), grounded on the teacher's offline.go render loop: build a
// graph once, advance it sample-by-sample for a fixed duration, write a WAV.
func newRenderCmd(flags *rootFlags) *cobra.Command {
	var cycles float64
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "render <source.json> <out.wav>",
		Short: "compile a program and render it to a WAV file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourcePath, outPath := args[0], args[1]
			logger := flags.newLogger()

			bank, err := loadBank(flags.samplesDir, logger)
			if err != nil {
				return err
			}
			g, err := flags.buildGraph(sourcePath, bank, logger)
			if err != nil {
				return fmt.Errorf("phonon render: compile %s: %w", sourcePath, err)
			}

			samples, manifest := render.RenderCycles(g, flags.sampleRate, g.Cps(), cycles)
			if err := render.WriteWAV(outPath, samples, flags.sampleRate); err != nil {
				return fmt.Errorf("phonon render: %w", err)
			}
			g.DrainDegraded()
			fmt.Fprintf(cmd.OutOrStdout(), "rendered %d frames (%.2f cycles @ %.3g cps) to %s, peak=%.3f rms=%.3f\n",
				manifest.Frames, manifest.Cycles, manifest.Cps, outPath, manifest.Peak, manifest.RMS)

			if manifestPath != "" {
				data, err := json.MarshalIndent(manifest, "", "  ")
				if err != nil {
					return err
				}
				if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
					return fmt.Errorf("phonon render: write manifest %s: %w", manifestPath, err)
				}
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&cycles, "cycles", 4, "number of cycles to render")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "optional path to write a JSON render manifest (SPEC_FULL.md §C)")
	return cmd
}
