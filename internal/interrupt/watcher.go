// Package interrupt turns SIGINT and SIGTERM into context cancellation.
//
// The first signal cancels the context so that work in flight can stop and
// remove its partial outputs. A second signal exits the process at once.
package interrupt

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ExitInterrupt is the exit code for interrupt (130 = 128 + SIGINT).
const ExitInterrupt = 130

const (
	cleanupMessage = "\nInterrupted; removing partial output (press Ctrl+C again to quit now)."
	abortMessage   = "Aborted."
)

// Watcher cancels a context on the first interrupt and exits on the second.
type Watcher struct {
	mu      sync.Mutex
	signals int
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}

	exit   func(int)
	stderr io.Writer
}

// Options holds injectable dependencies for testing.
type Options struct {
	// Signals replaces the OS signal channel.
	Signals <-chan os.Signal
	// Exit replaces os.Exit.
	Exit func(int)
	// Stderr receives the user-facing notices. Defaults to os.Stderr.
	Stderr io.Writer
}

// Watch starts listening for SIGINT and SIGTERM. The returned context is
// canceled on the first signal.
func Watch(parent context.Context) (*Watcher, context.Context) {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	return WatchWithOptions(parent, Options{Signals: ch})
}

// WatchWithOptions is Watch with injected dependencies.
func WatchWithOptions(parent context.Context, opts Options) (*Watcher, context.Context) {
	ctx, cancel := context.WithCancel(parent)

	w := &Watcher{
		cancel: cancel,
		done:   make(chan struct{}),
		exit:   opts.Exit,
		stderr: opts.Stderr,
	}
	if w.exit == nil {
		w.exit = os.Exit
	}
	if w.stderr == nil {
		w.stderr = os.Stderr
	}

	if opts.Signals != nil {
		go w.listen(opts.Signals)
	}
	return w, ctx
}

func (w *Watcher) listen(ch <-chan os.Signal) {
	for {
		select {
		case <-w.done:
			return
		case _, ok := <-ch:
			if !ok {
				return
			}

			w.mu.Lock()
			if w.stopped {
				w.mu.Unlock()
				return
			}
			w.signals++
			n := w.signals
			w.mu.Unlock()

			if n == 1 {
				fmt.Fprintln(w.stderr, cleanupMessage)
				w.cancel()
				continue
			}
			fmt.Fprintln(w.stderr, abortMessage)
			w.exit(ExitInterrupt)
			return
		}
	}
}

// Interrupted reports whether at least one signal was received.
func (w *Watcher) Interrupted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.signals > 0
}

// Stop releases the signal handlers. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	w.mu.Unlock()

	signal.Reset(syscall.SIGINT, syscall.SIGTERM)
	w.cancel()
	close(w.done)
}
