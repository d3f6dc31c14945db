package scanner

import (
	"os"
	"time"

	"github.com/maypok86/otter"
)

const cacheCapacity = 16384

// fileCacheEntry holds the fingerprint and the last computed statements for
// one scanned file. The fingerprint is a cheap size+mtime composite, not a
// content hash: enough to detect the overwhelming case of unchanged files
// without reading them.
type fileCacheEntry struct {
	size       int64
	mtime      time.Time
	statements []Statement
}

// fileCache is the per-path result cache. Each engine owns exactly one and
// mutates it only from its own scan methods.
type fileCache struct {
	entries otter.Cache[string, fileCacheEntry]
}

func newFileCache() (*fileCache, error) {
	entries, err := otter.MustBuilder[string, fileCacheEntry](cacheCapacity).Build()
	if err != nil {
		return nil, err
	}
	return &fileCache{entries: entries}, nil
}

// lookup returns the cached statements when the fingerprint still matches.
func (fc *fileCache) lookup(path string, info os.FileInfo) ([]Statement, bool) {
	entry, ok := fc.entries.Get(path)
	if !ok {
		return nil, false
	}
	if entry.size != info.Size() || !entry.mtime.Equal(info.ModTime()) {
		return nil, false
	}
	return entry.statements, true
}

// store overwrites the entry for path after a successful scan.
func (fc *fileCache) store(path string, info os.FileInfo, statements []Statement) {
	fc.entries.Set(path, fileCacheEntry{
		size:       info.Size(),
		mtime:      info.ModTime(),
		statements: statements,
	})
}

func (fc *fileCache) invalidate(path string) {
	fc.entries.Delete(path)
}

func (fc *fileCache) close() {
	fc.entries.Close()
}
