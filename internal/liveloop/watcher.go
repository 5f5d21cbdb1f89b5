package liveloop

import (
	"github.com/ekg/phonon-sub005/internal/graph"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// CompileFunc turns the current contents of the watched source into a fresh
// Graph. It is supplied by the out-of-scope surface-DSL compiler (spec.md
// §1's "the surface DSL parser and compiler... out of scope"); this package
// only calls it and swaps the result in.
type CompileFunc func() (*graph.Graph, error)

// Watcher recompiles and atomically swaps the live graph whenever its
// source file changes on disk. Grounded on the pack's fsnotify dependency
// (carried via go.mod per SPEC_FULL.md §B) using the library's standard
// Events/Errors channel idiom; there is no teacher precedent for a file
// watcher, since the teacher's own MML playback has no live-reload.
type Watcher struct {
	cell    *GraphCell
	compile CompileFunc
	watcher *fsnotify.Watcher
	logger  zerolog.Logger
	done    chan struct{}
}

// NewWatcher opens an fsnotify watch on path and returns a Watcher ready to
// Run. The first compile happens synchronously here so Run's caller can
// start the audio callback with a non-nil graph immediately.
func NewWatcher(path string, cell *GraphCell, compile CompileFunc, logger zerolog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{cell: cell, compile: compile, watcher: fw, logger: logger, done: make(chan struct{})}
	if g, err := compile(); err != nil {
		logger.Warn().Err(err).Msg("initial compile failed; starting silent")
	} else {
		cell.Swap(g)
	}
	return w, nil
}

// Run processes fsnotify events until Close is called. Meant to be run in
// its own goroutine, entirely separate from the audio callback thread.
func (w *Watcher) Run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.recompile()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("file watcher error")
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) recompile() {
	g, err := w.compile()
	if err != nil {
		w.logger.Warn().Err(err).Msg("recompile failed; keeping previous graph")
		return
	}
	w.cell.Swap(g)
	w.logger.Info().Msg("graph recompiled and swapped in")
}

// Close stops the watcher goroutine and releases the underlying fsnotify
// handle.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
