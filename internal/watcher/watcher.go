// Package watcher tails the dashboard access log and feeds parsed entries
// into the traffic pipeline.
package watcher

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/models"
)

// Line format written by the dashboard access logger:
//
//	2006-01-02 15:04:05,123 - IP: 203.0.113.9 - GET /api/data
var lineRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}),\d+ - IP: (\S+) - (.*)$`)

const timeLayout = "2006-01-02 15:04:05"

// Watcher follows one access log file. The dashboard truncates the log on
// startup, so a shrinking file resets the read offset instead of erroring.
type Watcher struct {
	path   string
	sink   func(models.TrafficEntry)
	offset int64
}

func New(path string, sink func(models.TrafficEntry)) *Watcher {
	return &Watcher{path: path, sink: sink}
}

// Run tails the file until ctx is cancelled. The file does not need to exist
// yet; entries appear once the dashboard starts writing.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fs watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	log.Printf("watcher: following %s", w.path)
	w.readNew()

	// ticker backstop for missed events
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Name == w.path && ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.readNew()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher: %v", err)
		case <-ticker.C:
			w.readNew()
		}
	}
}

// readNew consumes complete lines appended since the last read.
func (w *Watcher) readNew() {
	f, err := os.Open(w.path)
	if err != nil {
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return
	}
	if info.Size() < w.offset {
		// log was truncated, start over
		w.offset = 0
	}
	if _, err := f.Seek(w.offset, io.SeekStart); err != nil {
		return
	}

	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			// partial line, wait for the rest
			break
		}
		w.offset += int64(len(line))
		if entry, ok := ParseLine(strings.TrimRight(line, "\r\n")); ok {
			w.sink(entry)
		}
	}
}

// ParseLine converts one access-log line into a traffic entry. Lines that do
// not match the dashboard's format are skipped.
func ParseLine(line string) (models.TrafficEntry, bool) {
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return models.TrafficEntry{}, false
	}

	ts, err := time.ParseInLocation(timeLayout, m[1], time.Local)
	if err != nil {
		return models.TrafficEntry{}, false
	}

	entry := models.TrafficEntry{
		ID:        uuid.New().String(),
		Timestamp: ts,
		SourceIP:  m[2],
	}

	// message is usually "METHOD /path", anything else stays in Path as-is
	fields := strings.Fields(m[3])
	switch {
	case len(fields) >= 2 && strings.HasPrefix(fields[1], "/"):
		entry.Method = fields[0]
		entry.Path = fields[1]
	case len(fields) == 1:
		entry.Path = fields[0]
	}
	return entry, true
}
