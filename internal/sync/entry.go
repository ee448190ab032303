package sync

import (
	"path/filepath"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

// EntryKind is the classification of a scanned filesystem node.
type EntryKind uint8

const (
	KindFile EntryKind = iota
	KindDir
	KindSymlink
	KindOther
)

var kindNames = []string{
	"file",
	"dir",
	"symlink",
	"other",
}

func (k EntryKind) String() string {
	return kindNames[k]
}

// TreeEntry is one node of a scanned tree. Entries are owned by the
// ScanResult that produced them and are not mutated after the scan returns.
type TreeEntry struct {
	// Path is the tree-relative key, slash-separated, never empty,
	// never containing "." or ".." segments.
	Path string
	Kind EntryKind

	// Size and ModTime are set for KindFile only.
	Size    int64
	ModTime time.Time

	// Children holds the path keys of a directory's immediate children,
	// sorted by name.
	Children []string

	// Err is set for KindOther entries that could not be read.
	Err error
}

// ScanResult is the ordered output of one Scan invocation. Entries appear
// in depth-first order with children visited lexicographically.
type ScanResult struct {
	Root    string
	Entries []*TreeEntry

	byPath map[string]*TreeEntry
}

func newScanResult(root string) *ScanResult {
	return &ScanResult{
		Root:   root,
		byPath: make(map[string]*TreeEntry),
	}
}

func (s *ScanResult) add(e *TreeEntry) {
	s.Entries = append(s.Entries, e)
	s.byPath[e.Path] = e

	if parent, ok := s.byPath[parentKey(e.Path)]; ok && parent.Kind == KindDir {
		parent.Children = append(parent.Children, e.Path)
	}
}

// Lookup returns the entry for a path key.
func (s *ScanResult) Lookup(path string) (*TreeEntry, bool) {
	e, ok := s.byPath[path]
	return e, ok
}

func (s *ScanResult) Len() int {
	return len(s.Entries)
}

// Paths returns the set of all path keys in the scan.
func (s *ScanResult) Paths() mapset.Set[string] {
	paths := mapset.NewThreadUnsafeSetWithSize[string](len(s.Entries))
	for _, e := range s.Entries {
		paths.Add(e.Path)
	}
	return paths
}

// AbsPath converts a path key back to an absolute path under the scan root.
func (s *ScanResult) AbsPath(relPath string) string {
	return filepath.Join(s.Root, filepath.FromSlash(relPath))
}

// NormPath normalizes a path into a tree-relative key: cleaned,
// slash-separated, no leading separators.
func NormPath(path string) string {
	path = filepath.Clean(path)
	path = strings.ReplaceAll(path, "\\", "/")
	return strings.TrimLeft(path, "/")
}

func parentKey(path string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

// isUnder reports whether path sits below ancestor in the tree.
func isUnder(path, ancestor string) bool {
	return strings.HasPrefix(path, ancestor+"/")
}
