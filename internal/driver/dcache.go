package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/vmihailenco/msgpack/v5"

	"oxide/internal/diag"
	"oxide/internal/project"
	"oxide/internal/source"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит диагностики разбора по хешу содержимого файла и лимитов.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is what `oxide diag --cache` needs to replay a file without
// parsing it again. Spans are byte offsets into the file the key was built from.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Path        string
	ContentHash project.Digest
	Halted      bool
	Nodes       int
	Dropped     int

	Diagnostics []CachedDiagnostic
}

type CachedDiagnostic struct {
	Severity uint8
	Code     uint16
	Message  string
	Start    uint32
	End      uint32
	Notes    []CachedNote `msgpack:",omitempty"`
	Fixes    []CachedFix  `msgpack:",omitempty"`
}

type CachedNote struct {
	Start uint32
	End   uint32
	Msg   string
}

type CachedFix struct {
	Title string
	Edits []CachedNote // Msg хранит NewText
}

// OpenDiskCache initializes and returns a disk cache under the user cache
// directory ($XDG_CACHE_HOME/<app> on Linux).
func OpenDiskCache(app string) (*DiskCache, error) {
	return NewDiskCache(filepath.Join(xdg.CacheHome, app))
}

// NewDiskCache uses dir as is; it is created when missing.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key project.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// подкаталог по первым двум символам, чтобы не держать всё в одном каталоге
	return filepath.Join(c.dir, "diag", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key project.Digest, payload *DiskPayload) (err error) {
	if c == nil || payload == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	renamed := false
	defer func() {
		if renamed {
			return
		}
		_ = f.Close()
		if rmErr := os.Remove(f.Name()); rmErr != nil && err == nil {
			err = rmErr
		}
	}()

	payload.Schema = diskCacheSchemaVersion
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	if err := os.Rename(f.Name(), p); err != nil {
		return err
	}
	renamed = true
	return nil
}

// Get reads and deserializes a payload from the disk cache. Entries written
// by another schema version are reported as a miss.
func (c *DiskCache) Get(key project.Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// cacheKey: содержимое файла плюс лимиты разбора, от которых зависит результат.
func cacheKey(file *source.File, cfg project.ParseConfig) project.Digest {
	return project.Combine(project.Digest(file.Hash), cfg.Fingerprint())
}

func toDiskPayload(file *source.File, bag *diag.Bag, halted bool, nodes int) *DiskPayload {
	items := bag.Items()
	payload := &DiskPayload{
		Schema:      diskCacheSchemaVersion,
		Path:        file.Path,
		ContentHash: project.Digest(file.Hash),
		Halted:      halted,
		Nodes:       nodes,
		Dropped:     bag.Dropped(),
		Diagnostics: make([]CachedDiagnostic, 0, len(items)),
	}
	for _, d := range items {
		cd := CachedDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		}
		for _, n := range d.Notes {
			cd.Notes = append(cd.Notes, CachedNote{Start: n.Span.Start, End: n.Span.End, Msg: n.Msg})
		}
		for _, fix := range d.Fixes {
			cf := CachedFix{Title: fix.Title}
			for _, e := range fix.Edits {
				cf.Edits = append(cf.Edits, CachedNote{Start: e.Span.Start, End: e.Span.End, Msg: e.NewText})
			}
			cd.Fixes = append(cd.Fixes, cf)
		}
		payload.Diagnostics = append(payload.Diagnostics, cd)
	}
	return payload
}

// restoreBag переносит диагностики payload на файл с указанным FileID.
// Счётчик отброшенных не восстанавливается: Bag его не принимает извне.
func restoreBag(payload *DiskPayload, file source.FileID, max int) *diag.Bag {
	bag := diag.NewBag(max)
	span := func(start, end uint32) source.Span {
		return source.Span{File: file, Start: start, End: end}
	}
	for _, cd := range payload.Diagnostics {
		d := diag.New(diag.Severity(cd.Severity), diag.Code(cd.Code), span(cd.Start, cd.End), cd.Message)
		for _, n := range cd.Notes {
			d = d.WithNote(span(n.Start, n.End), n.Msg)
		}
		for _, cf := range cd.Fixes {
			edits := make([]diag.FixEdit, 0, len(cf.Edits))
			for _, e := range cf.Edits {
				edits = append(edits, diag.FixEdit{Span: span(e.Start, e.End), NewText: e.Msg})
			}
			d = d.WithFix(cf.Title, edits...)
		}
		bag.Add(d)
	}
	return bag
}
