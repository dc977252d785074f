package journal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

const (
	// pollInterval is how long to wait for filesystem events before
	// re-reading anyway. Some filesystems never deliver notifications.
	pollInterval = 500 * time.Millisecond

	// rereadRate caps how often the journal is re-read when the engine
	// appends in rapid bursts.
	rereadRate = 100 * time.Millisecond
)

// Follow replays the journal's existing lines, then keeps delivering new
// complete lines as the engine appends them, until ctx is cancelled or
// deliver returns an error. fsnotify wakes the read loop early; a
// rate-limited poll covers filesystems without notifications.
func Follow(ctx context.Context, path string, deliver func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		defer watcher.Close()
		// Watch the directory; the file itself may be renamed over.
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			watcher.Close()
			watcher = nil
		}
	} else {
		watcher = nil
	}

	limiter := rate.NewLimiter(rate.Every(rereadRate), 1)
	reader := bufio.NewReader(f)
	var partial []byte

	for {
		if err := drainLines(reader, &partial, deliver); err != nil {
			return err
		}

		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		if watcher == nil {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-watcher.Events:
		case <-watcher.Errors:
		case <-time.After(pollInterval):
		}
	}
}

// drainLines delivers every complete line currently readable. A trailing
// fragment without a newline is kept for the next pass.
func drainLines(reader *bufio.Reader, partial *[]byte, deliver func(line []byte) error) error {
	for {
		chunk, err := reader.ReadBytes('\n')
		if len(chunk) > 0 && chunk[len(chunk)-1] == '\n' {
			line := append(*partial, chunk[:len(chunk)-1]...)
			*partial = nil
			if len(line) > 0 {
				if err := deliver(line); err != nil {
					return err
				}
			}
		} else if len(chunk) > 0 {
			*partial = append(*partial, chunk...)
		}

		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("reading journal: %w", err)
		}
	}
}
