package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ekg/phonon-sub005/internal/graph"
	"github.com/ekg/phonon-sub005/internal/midi"
	"github.com/ekg/phonon-sub005/internal/program"
	"github.com/ekg/phonon-sub005/internal/samplebank"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// rootFlags bundles the PersistentFlags SPEC_FULL.md §A names
// (--sample-rate, --cps, --max-voices), plus --samples for the sample
// directory loaded into the SampleBank every Sample node draws from, and
// --midi-in for the optional physical MIDI port a MidiInput node listens on.
type rootFlags struct {
	sampleRate int
	cps        float64
	cpsSet     bool
	maxVoices  int
	samplesDir string
	midiPort   string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "phonon",
		Short:         "a live-coding audio system with continuous, pattern-valued control signals",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().IntVar(&flags.sampleRate, "sample-rate", 44100, "audio sample rate in Hz")
	root.PersistentFlags().Float64Var(&flags.cps, "cps", 0, "override the program's cycles-per-second tempo (unset = use the program's own cps; an explicit 0 stops time)")
	root.PersistentFlags().IntVar(&flags.maxVoices, "max-voices", 64, "size of the fixed polyphonic voice pool")
	root.PersistentFlags().StringVar(&flags.samplesDir, "samples", "samples", "directory of .wav files loaded into the sample bank, named by file stem")
	root.PersistentFlags().StringVar(&flags.midiPort, "midi-in", "", "name of a physical MIDI input port to feed every MidiInput node (unset = MidiInput nodes stay silent)")
	root.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "enable info-level logging")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		flags.cpsSet = cmd.Flags().Changed("cps")
		return nil
	}

	root.AddCommand(newRenderCmd(flags))
	root.AddCommand(newLiveCmd(flags))
	return root
}

func (f *rootFlags) newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if f.verbose {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		Level(level).With().Timestamp().Logger()
}

// loadBank walks dir (if it exists) for *.wav files and registers each
// under its file stem, per spec.md §4.4's "SampleBank... returns immutable
// audio buffers by name" seam. A missing directory is not an error -- a
// program with no Sample nodes needs no bank at all.
//
// A stem ending in "-N" or "_N" (bd-1.wav, bd_2.wav) registers as variant N
// of the base name "bd", so a mini-notation pattern's "bd:1" (spec.md §3's
// `n` context key) can select it; a plain "bd.wav" is variant 0.
func loadBank(dir string, logger zerolog.Logger) (*samplebank.Bank, error) {
	bank := samplebank.New()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return bank, nil
		}
		return nil, fmt.Errorf("phonon: read samples dir %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".wav") {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		name, index := splitVariantStem(stem)
		path := filepath.Join(dir, e.Name())
		if err := bank.LoadVariantFile(name, index, path); err != nil {
			return nil, fmt.Errorf("phonon: load sample %s: %w", path, err)
		}
		logger.Info().Str("name", name).Int("variant", index).Str("path", path).Msg("loaded sample")
	}
	return bank, nil
}

// splitVariantStem splits a file stem like "bd-1" or "bd_1" into its base
// name and variant index; a stem with no numeric suffix is variant 0.
func splitVariantStem(stem string) (name string, index int) {
	cut := -1
	for _, sep := range []byte{'-', '_'} {
		if i := strings.LastIndexByte(stem, sep); i > 0 && i < len(stem)-1 {
			if n, err := strconv.Atoi(stem[i+1:]); err == nil && n >= 0 {
				if i > cut {
					cut = i
					index = n
				}
			}
		}
	}
	if cut < 0 {
		return stem, 0
	}
	return stem[:cut], index
}

// buildGraph loads the program document at sourcePath, applies a --cps
// override if one was given, and builds a runnable graph.Graph against the
// flags' sample rate, voice pool size, and sample bank.
func (f *rootFlags) buildGraph(sourcePath string, bank *samplebank.Bank, logger zerolog.Logger) (*graph.Graph, error) {
	prog, err := program.LoadFile(sourcePath)
	if err != nil {
		return nil, err
	}
	if f.cpsSet {
		prog.Cps = f.cps
	}
	return graph.Build(prog, graph.Config{
		SampleRate: float64(f.sampleRate),
		MaxVoices:  f.maxVoices,
		Bank:       bank,
		Logger:     logger,
	})
}

// compilerFor returns a liveloop.CompileFunc closed over sourcePath, for
// both the initial build and every subsequent file-watcher recompile, plus
// a closer for whatever physical MIDI port it opened (a no-op if --midi-in
// was never set). When --midi-in names a port, the listener is opened
// exactly once here and every freshly built graph's MidiInput nodes are
// bound to its queue -- a file-watcher reload rebuilds the Graph (spec.md
// §4.7) but must not reopen the physical port each time.
func (f *rootFlags) compilerFor(sourcePath string, bank *samplebank.Bank, logger zerolog.Logger) (compile func() (*graph.Graph, error), closeMidi func(), err error) {
	var queue *midi.SharedEventQueue
	closeMidi = func() {}
	if f.midiPort != "" {
		queue = midi.NewSharedEventQueue()
		listener, openErr := midi.Open(f.midiPort, queue)
		if openErr != nil {
			return nil, nil, fmt.Errorf("phonon: open midi port %q: %w", f.midiPort, openErr)
		}
		logger.Info().Str("port", f.midiPort).Msg("listening for MIDI input")
		closeMidi = listener.Close
	}
	compile = func() (*graph.Graph, error) {
		g, buildErr := f.buildGraph(sourcePath, bank, logger)
		if buildErr != nil {
			return nil, buildErr
		}
		if queue != nil {
			g.BindMidiQueue(queue)
		}
		return g, nil
	}
	return compile, closeMidi, nil
}
