package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ekg/phonon-sub005/internal/audio"
	"github.com/ekg/phonon-sub005/internal/liveloop"
	"github.com/spf13/cobra"
)

// newLiveCmd wires `phonon live <source>` (spec.md §6.3, §4.7): open the
// audio device, compile the source once synchronously, then watch it for
// changes and atomically swap in a freshly-compiled graph on every save,
// never interrupting the audio callback thread. Grounded on the teacher's
// cmd/play_mml_ui playback loop for the device side and internal/liveloop
// for the watch/swap side.
func newLiveCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live <source.json>",
		Short: "play a program live, reloading on every source-file save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourcePath := args[0]
			logger := flags.newLogger()

			bank, err := loadBank(flags.samplesDir, logger)
			if err != nil {
				return err
			}
			compile, closeMidi, err := flags.compilerFor(sourcePath, bank, logger)
			if err != nil {
				return err
			}
			defer closeMidi()

			cell := liveloop.NewGraphCell(nil)
			watcher, err := liveloop.NewWatcher(sourcePath, cell, compile, logger)
			if err != nil {
				return fmt.Errorf("phonon live: %w", err)
			}
			defer watcher.Close()
			go watcher.Run()

			source := liveloop.NewSource(cell)
			player, err := audio.NewPlayer(flags.sampleRate, source)
			if err != nil {
				return fmt.Errorf("phonon live: open audio device: %w", err)
			}
			player.Play()
			defer player.Stop()

			fmt.Fprintf(cmd.OutOrStdout(), "watching %s; ctrl-c to stop\n", sourcePath)
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig
			return nil
		},
	}
	return cmd
}
