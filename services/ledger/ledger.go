package ledger

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/belmontdev/mailbot/interfaces"
	"github.com/belmontdev/mailbot/internal/logger"
)

// FileLedger keeps the set of processed message identifiers in memory and
// mirrors it to a JSON array on disk. The file is rewritten wholesale on
// every addition; a failed write is logged and the in-memory state keeps
// going, so persisted state can briefly lag until the next successful flush.
// Identifiers are never evicted.
type FileLedger struct {
	path string
	log  logger.Logger

	mu    sync.RWMutex
	ids   map[string]struct{}
	order []string
}

func NewFileLedger(path string, log logger.Logger) *FileLedger {
	return &FileLedger{
		path: path,
		log:  log,
		ids:  make(map[string]struct{}),
	}
}

var _ interfaces.Ledger = (*FileLedger)(nil)

// Load reads the backing file into memory. A missing file means an empty
// ledger. Any other failure is logged and the ledger starts empty rather
// than blocking startup.
func (l *FileLedger) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		l.log.Errorf("Error loading processed message IDs from %s: %v", l.path, err)
		return nil
	}

	var stored []string
	if err := json.Unmarshal(data, &stored); err != nil {
		l.log.Errorf("Error parsing processed message IDs file %s: %v", l.path, err)
		return nil
	}

	l.ids = make(map[string]struct{}, len(stored))
	l.order = l.order[:0]
	for _, id := range stored {
		if _, seen := l.ids[id]; seen {
			continue
		}
		l.ids[id] = struct{}{}
		l.order = append(l.order, id)
	}

	l.log.Infof("Loaded %d processed message IDs from %s", len(l.order), l.path)
	return nil
}

// Flush rewrites the backing file from the in-memory set.
func (l *FileLedger) Flush() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.flushLocked()
}

// Contains reports whether a reply has already been dispatched for id.
func (l *FileLedger) Contains(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.ids[id]
	return ok
}

// Add records id as processed and synchronously flushes to storage. A flush
// failure does not roll back the in-memory addition.
func (l *FileLedger) Add(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.ids[id]; ok {
		return
	}

	l.ids[id] = struct{}{}
	l.order = append(l.order, id)

	if err := l.flushLocked(); err != nil {
		l.log.Errorf("Error saving processed message IDs: %v", err)
	}
}

// Size returns the number of recorded identifiers.
func (l *FileLedger) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.order)
}

func (l *FileLedger) flushLocked() error {
	stored := l.order
	if stored == nil {
		stored = []string{}
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return errors.Wrap(err, "failed to marshal processed message IDs")
	}

	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", l.path)
	}

	return nil
}
