// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch ingests PDFs as they appear in a directory.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/report-qa/internal/qa"
)

// DefaultSettle is how long a file must stay quiet before it is ingested.
const DefaultSettle = 750 * time.Millisecond

// Ingester ingests one PDF from disk.
type Ingester interface {
	IngestFile(ctx context.Context, path string) (qa.IngestResult, error)
}

// Watcher ingests each new PDF in a directory once.
type Watcher struct {
	dir    string
	ing    Ingester
	log    logrus.FieldLogger
	settle time.Duration
	done   map[string]bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettle overrides DefaultSettle.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) { w.settle = d }
}

// New creates a watcher for dir.
func New(dir string, ing Ingester, log logrus.FieldLogger, opts ...Option) *Watcher {
	w := &Watcher{dir: dir, ing: ing, log: log, settle: DefaultSettle, done: make(map[string]bool)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks until ctx is done. Files created in or moved into the
// directory are ingested after they stop changing for the settle period.
// Ingestion errors are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	w.log.WithField("dir", w.dir).Info("watching for new PDFs")

	ready := make(chan string)
	pending := make(map[string]*time.Timer)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !isPDF(ev.Name) || w.done[ev.Name] {
				continue
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if t, ok := pending[ev.Name]; ok {
				t.Reset(w.settle)
				continue
			}
			path := ev.Name
			pending[path] = time.AfterFunc(w.settle, func() {
				select {
				case ready <- path:
				case <-ctx.Done():
				}
			})

		case path := <-ready:
			delete(pending, path)
			w.ingest(ctx, path)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("watch error")
		}
	}
}

func (w *Watcher) ingest(ctx context.Context, path string) {
	if w.done[path] {
		return
	}
	res, err := w.ing.IngestFile(ctx, path)
	if err != nil {
		w.log.WithError(err).WithField("path", path).Error("ingest failed")
		return
	}
	w.done[path] = true
	w.log.WithFields(logrus.Fields{
		"path":   path,
		"doc_id": res.DocID,
		"pages":  res.Pages,
		"chunks": res.ChunksAdded,
	}).Info("ingested")
}

func isPDF(path string) bool {
	base := filepath.Base(path)
	return !strings.HasPrefix(base, ".") && strings.EqualFold(filepath.Ext(base), ".pdf")
}
