// Command phonon is the CLI surface spec.md §6.3 names: `render` compiles a
// program and renders it to a WAV file; `live` starts the audio callback and
// watches the source for live reload. Grounded on the teacher's
// cmd/play_mml (a thin flag-parsing wrapper around the library's own
// Player/offline renderer), rewired per SPEC_FULL.md §A onto
// github.com/spf13/cobra in place of the teacher's bare flag.FlagSet.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
