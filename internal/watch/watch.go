// Package watch turns filesystem notifications under a set of roots into
// change events for the task registry.
//
// A file's UUID entry is the low 32 bits of its inode number. On
// filesystems that hand out larger inode numbers, two live files can share
// an entry; consumers that need to tell them apart use the event path.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bamsammich/taskmap/internal/event"
)

// Publisher receives change events. *task.Registry implements it.
type Publisher interface {
	Publish(ev event.ChangeEvent) int
}

// Config configures a Watcher.
type Config struct {
	Publisher Publisher
	Logger    *slog.Logger
	Roots     []string
}

type fileStat struct {
	ino   uint64
	size  int64
	isDir bool
}

// Watcher watches directory trees and publishes a ChangeEvent for every
// create, write, remove, rename and chmod it sees. Subdirectories created
// after startup are watched as they appear.
type Watcher struct {
	pub     Publisher
	watcher *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *slog.Logger
	ids     *identities

	mu          sync.Mutex
	watchedDirs map[string]struct{}

	wg sync.WaitGroup
}

// New starts watching every root recursively. Roots must be existing
// directories.
func New(ctx context.Context, cfg Config) (*Watcher, error) {
	if cfg.Publisher == nil {
		return nil, errors.New("publisher required")
	}
	if len(cfg.Roots) == 0 {
		return nil, errors.New("at least one watch root required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	wctx, cancel := context.WithCancel(ctx)
	w := &Watcher{
		pub:         cfg.Publisher,
		watcher:     fw,
		ctx:         wctx,
		cancel:      cancel,
		logger:      logger,
		ids:         newIdentities(maxDetached),
		watchedDirs: make(map[string]struct{}),
	}

	for _, root := range cfg.Roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			w.Close()
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			w.Close()
			return nil, err
		}
		if !info.IsDir() {
			w.Close()
			return nil, errors.New("watch root is not a directory: " + abs)
		}
		if err := w.addTree(abs, false); err != nil {
			w.Close()
			return nil, err
		}
	}

	w.wg.Go(w.run)
	return w, nil
}

// Close stops the watcher and waits for the event loop to exit.
func (w *Watcher) Close() {
	w.cancel()
	_ = w.watcher.Close()
	w.wg.Wait()
}

// Dirs returns how many directories are currently watched.
func (w *Watcher) Dirs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watchedDirs)
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// addTree watches dir and every directory below it. Files already present
// are recorded so later events carry stable identities; with announce set
// they are also published as added, covering files created before the new
// directory's watch was in place.
func (w *Watcher) addTree(dir string, announce bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return w.addDirectoryWatch(path)
		}
		st, err := statPath(path)
		if err != nil {
			return nil //nolint:nilerr // file vanished during the walk
		}
		w.ids.observe(path, st.ino)
		if announce {
			w.pub.Publish(event.ChangeEvent{Path: path, UUID: w.ids.uuid(st.ino), State: event.Added})
		}
		return nil
	})
}

func (w *Watcher) addDirectoryWatch(path string) error {
	path = filepath.Clean(path)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.watchedDirs[path]; ok {
		return nil
	}
	if err := w.watcher.Add(path); err != nil {
		return err
	}
	w.watchedDirs[path] = struct{}{}
	w.logger.Debug("watching directory", "path", path)
	return nil
}

// removeDirectoryWatch forgets path and everything watched below it.
func (w *Watcher) removeDirectoryWatch(path string) {
	path = filepath.Clean(path)
	prefix := path + string(filepath.Separator)

	w.mu.Lock()
	defer w.mu.Unlock()

	for dir := range w.watchedDirs {
		if dir != path && !strings.HasPrefix(dir, prefix) {
			continue
		}
		delete(w.watchedDirs, dir)
		// The kernel drops watches on deleted directories by itself.
		_ = w.watcher.Remove(dir)
	}
}

//nolint:revive // cognitive-complexity: directory bookkeeping plus identity lookup per op
func (w *Watcher) handleEvent(fe fsnotify.Event) {
	path := filepath.Clean(fe.Name)
	kind := kindOf(fe.Op)
	if kind == 0 {
		return
	}

	st, statErr := statPath(path)
	exists := statErr == nil

	switch {
	case exists && st.isDir && fe.Op.Has(fsnotify.Create):
		if err := w.addTree(path, true); err != nil {
			w.logger.Error("add directory watch", "path", path, "error", err)
		}
	case fe.Op.Has(fsnotify.Remove) || fe.Op.Has(fsnotify.Rename):
		w.removeDirectoryWatch(path)
	}

	var ino uint64
	switch {
	case exists && fe.Op.Has(fsnotify.Create):
		ino = st.ino
		w.ids.create(path, ino)
	case exists:
		ino = st.ino
		w.ids.observe(path, ino)
	default:
		var ok bool
		if fe.Op.Has(fsnotify.Remove) || fe.Op.Has(fsnotify.Rename) {
			ino, ok = w.ids.forget(path, fe.Op.Has(fsnotify.Remove))
		} else {
			ino, ok = w.ids.lookup(path)
		}
		if !ok {
			w.logger.Debug("event for unknown path", "path", path, "op", fe.Op.String())
			return
		}
	}

	ev := event.ChangeEvent{
		Path:   path,
		UUID:   w.ids.uuid(ino),
		Offset: offsetOf(fe.Op, st),
		State:  kind,
	}
	n := w.pub.Publish(ev)
	w.logger.Debug("published change", "path", path, "state", kind.String(), "tasks", n)
}

// kindOf maps fsnotify operations to event kinds.
func kindOf(op fsnotify.Op) event.Kind {
	var k event.Kind
	if op.Has(fsnotify.Create) {
		k |= event.Added
	}
	if op.Has(fsnotify.Write) {
		k |= event.Modified
	}
	if op.Has(fsnotify.Remove) {
		k |= event.Removed
	}
	if op.Has(fsnotify.Rename) {
		k |= event.Moved
	}
	if op.Has(fsnotify.Chmod) {
		k |= event.Attrib
	}
	return k
}

// offsetOf picks the byte offset reported for an event. Notifications do not
// carry the written range, so writes report the block holding the last byte
// of the file and every other kind reports offset zero.
func offsetOf(op fsnotify.Op, st fileStat) uint64 {
	if !op.Has(fsnotify.Write) || st.size <= 0 {
		return 0
	}
	return uint64(st.size - 1) //nolint:gosec // G115: size is positive
}

// maxDetached bounds how many inodes with no watched path keep their
// generation. Beyond it the least recently detached are forgotten, and a
// reuse of one of those inode numbers starts again at generation 0.
const maxDetached = 1 << 16

// identities assigns each file an entry number (its inode) and a
// generation that advances whenever a removed file's inode number is handed
// to a new file, so a reused inode never aliases the old file's UUID. A
// renamed file keeps its UUID.
//
// Only inodes named by a watched path or held in the detached cache are
// tracked. Zero generations are implied rather than stored.
type identities struct {
	byPath      map[string]uint64
	refs        map[uint64]int
	generations map[uint64]uint32
	detached    *lru.Cache[uint64, bool] // inode -> removed rather than renamed away
	mu          sync.Mutex
}

func newIdentities(capacity int) *identities {
	ids := &identities{
		byPath:      make(map[string]uint64),
		refs:        make(map[uint64]int),
		generations: make(map[uint64]uint32),
	}
	ids.detached, _ = lru.NewWithEvict(max(capacity, 1), ids.release) // only fails for size <= 0
	return ids
}

// release drops the generation of an inode leaving the detached cache,
// unless a path names it again. Called with ids.mu held.
func (ids *identities) release(ino uint64, _ bool) {
	if ids.refs[ino] == 0 {
		delete(ids.generations, ino)
	}
}

// observe records path's inode without changing its generation.
func (ids *identities) observe(path string, ino uint64) {
	ids.mu.Lock()
	defer ids.mu.Unlock()
	ids.link(path, ino)
}

// create records a file appearing at path. A recycled inode gets the next
// generation; a moved one keeps its own.
func (ids *identities) create(path string, ino uint64) {
	ids.mu.Lock()
	defer ids.mu.Unlock()
	if removed, ok := ids.detached.Peek(ino); ok && removed {
		ids.generations[ino]++
	}
	ids.link(path, ino)
}

// forget drops path and returns the inode it last had. Once no path names
// the inode it is detached; a removed one gets a new generation on reuse.
func (ids *identities) forget(path string, removed bool) (uint64, bool) {
	ids.mu.Lock()
	defer ids.mu.Unlock()
	ino, ok := ids.byPath[path]
	if !ok {
		return 0, false
	}
	delete(ids.byPath, path)
	ids.unlink(ino, removed)
	return ino, true
}

func (ids *identities) lookup(path string) (uint64, bool) {
	ids.mu.Lock()
	defer ids.mu.Unlock()
	ino, ok := ids.byPath[path]
	return ino, ok
}

func (ids *identities) uuid(ino uint64) event.UUID {
	ids.mu.Lock()
	defer ids.mu.Unlock()
	return event.NewUUID(uint32(ino), ids.generations[ino]) //nolint:gosec // G115: entry is the low 32 bits by layout
}

// tracked returns how many inodes carry state. Used by tests.
func (ids *identities) tracked() (generations, detached int) {
	ids.mu.Lock()
	defer ids.mu.Unlock()
	return len(ids.generations), ids.detached.Len()
}

// link points path at ino. A different inode previously at path loses
// that name as if removed. Callers hold ids.mu.
func (ids *identities) link(path string, ino uint64) {
	if old, ok := ids.byPath[path]; ok {
		if old == ino {
			return
		}
		ids.unlink(old, true)
	}
	ids.byPath[path] = ino
	ids.refs[ino]++
	ids.detached.Remove(ino)
}

// unlink drops one name of ino. Callers hold ids.mu.
func (ids *identities) unlink(ino uint64, removed bool) {
	if ids.refs[ino]--; ids.refs[ino] > 0 {
		return
	}
	delete(ids.refs, ino)
	ids.detached.Add(ino, removed)
}
