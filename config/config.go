// Package config keeps the process-wide list of settings groups that are
// persisted to and restored from the instrument's parameter file.
package config

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/calvinmclean/teststand/paramfile"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// WriteFunc serializes one settings group
type WriteFunc func(w io.Writer) error

// ReadFunc restores one settings group from a parsed file
type ReadFunc func(ctx context.Context, t paramfile.Table) error

type entry struct {
	id    int
	write WriteFunc
	read  ReadFunc
}

// Registry holds write/read callback pairs in registration order
type Registry struct {
	mtx     sync.Mutex
	nextID  int
	entries []entry
	log     logrus.FieldLogger
}

// Default is the registry shared by the whole process
var Default = NewRegistry(logrus.StandardLogger())

func NewRegistry(log logrus.FieldLogger) *Registry {
	return &Registry{log: log}
}

// Add registers a callback pair and returns the id used to remove it.
// Either callback may be nil.
func (r *Registry) Add(write WriteFunc, read ReadFunc) int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.nextID++
	r.entries = append(r.entries, entry{id: r.nextID, write: write, read: read})
	return r.nextID
}

// Remove unregisters a callback pair. Unknown ids are ignored.
func (r *Registry) Remove(id int) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered callback pairs
func (r *Registry) Len() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return len(r.entries)
}

func (r *Registry) snapshot() []entry {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return append([]entry(nil), r.entries...)
}

// Save calls every writer in registration order, separating groups with a blank line
func (r *Registry) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)

	var err error
	first := true
	for _, e := range r.snapshot() {
		if e.write == nil {
			continue
		}
		if !first {
			if _, werr := bw.WriteString("\n"); werr != nil {
				return werr
			}
		}
		first = false
		err = multierr.Append(err, e.write(bw))
	}

	return multierr.Append(err, bw.Flush())
}

// Load parses r and hands the result to every reader in registration order.
// Readers registered while the load is in progress are called as well, so a
// group can depend on state restored by an earlier one. A failing reader is
// logged and does not prevent the rest from running; all errors are returned
// combined.
func (r *Registry) Load(ctx context.Context, rd io.Reader) error {
	table, err := paramfile.Parse(rd)
	if err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}

	visited := map[int]bool{}
	for {
		if cerr := ctx.Err(); cerr != nil {
			return multierr.Append(err, cerr)
		}

		e, ok := r.nextUnvisited(visited)
		if !ok {
			return err
		}
		visited[e.id] = true

		if e.read == nil {
			continue
		}
		if rerr := e.read(ctx, table); rerr != nil {
			r.log.WithError(rerr).Error("error restoring config group")
			err = multierr.Append(err, rerr)
		}
	}
}

func (r *Registry) nextUnvisited(visited map[int]bool) (entry, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for _, e := range r.entries {
		if !visited[e.id] {
			return e, true
		}
	}
	return entry{}, false
}

// SaveFile writes the configuration to path, replacing any existing file
func (r *Registry) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}

	err = r.Save(f)
	return multierr.Append(err, f.Close())
}

// LoadFile restores the configuration from path
func (r *Registry) LoadFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening config file: %w", err)
	}
	defer f.Close()

	return r.Load(ctx, f)
}
