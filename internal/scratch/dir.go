package scratch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Dir is the process-wide scratch root shared by concurrent requests. Every
// file placed in it is namespaced by its request id. Dir also remembers which
// request ids are still running so the sweeper leaves their files alone.
type Dir struct {
	root string

	mu     sync.Mutex
	active map[string]int
}

// Open ensures root exists and returns a Dir rooted there.
func Open(root string) (*Dir, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("scratch directory is not configured")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}
	return &Dir{root: root, active: make(map[string]int)}, nil
}

// Acquire marks requestID as running. Each Acquire needs a matching Release.
func (d *Dir) Acquire(requestID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active[requestID]++
}

// Release undoes one Acquire for requestID.
func (d *Dir) Release(requestID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active[requestID] <= 1 {
		delete(d.active, requestID)
		return
	}
	d.active[requestID]--
}

// InUse reports whether a scratch file name belongs to a running request.
// Names are "<requestID>_..." as produced by the pipeline.
func (d *Dir) InUse(name string) bool {
	id, _, ok := strings.Cut(filepath.Base(name), "_")
	if !ok {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active[id] > 0
}

// Root returns the directory path.
func (d *Dir) Root() string {
	return d.root
}

// Path joins name onto the root. Any directory component in name is dropped
// so a caller-derived name can never escape the scratch directory.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.root, filepath.Base(name))
}

// FileInfo describes one leftover scratch file.
type FileInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// List returns the regular files in root, oldest first. Hidden files such as
// the sweep lock are omitted. A missing root yields an empty list.
func List(root string) ([]FileInfo, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Name:    entry.Name(),
			Path:    filepath.Join(root, entry.Name()),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}
