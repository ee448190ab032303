package sync

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gmurga/syncv/internal/utils"
)

// Scan walks the tree rooted at root and produces a ScanResult describing
// every node beneath it. The root itself is not recorded as an entry.
//
// An unreadable root yields an *AccessError and no result. An unreadable
// child does not abort the scan: it is recorded as a KindOther entry with
// the error attached. Symlinks are recorded as KindSymlink and never
// followed, so symlink cycles cannot loop the traversal.
//
// Traversal is depth-first with children visited in lexicographic order,
// which makes the entry order deterministic for a given tree.
func Scan(ctx context.Context, root string, ignore *IgnoreList) (*ScanResult, error) {
	root, err := utils.ResolvePath(root)
	if err != nil {
		return nil, &AccessError{Root: root, Err: err}
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, &AccessError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &AccessError{Root: root, Err: errors.New("not a directory")}
	}

	result := newScanResult(root)

	walkFn := func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if path == root {
			if walkErr != nil {
				return &AccessError{Root: root, Err: walkErr}
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		key := NormPath(rel)

		if walkErr != nil {
			// WalkDir reports a directory twice when its ReadDir fails:
			// once cleanly, then again with the error. Downgrade the
			// existing entry instead of recording the path twice.
			if prev, ok := result.Lookup(key); ok {
				prev.Kind = KindOther
				prev.Children = nil
				prev.Err = walkErr
			} else {
				result.add(&TreeEntry{Path: key, Kind: KindOther, Err: walkErr})
			}
			return nil
		}

		if ignore != nil && ignore.Match(key, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		switch {
		case d.Type()&fs.ModeSymlink != 0:
			result.add(&TreeEntry{Path: key, Kind: KindSymlink})

		case d.IsDir():
			result.add(&TreeEntry{Path: key, Kind: KindDir})

		case d.Type().IsRegular():
			info, err := d.Info()
			if err != nil {
				result.add(&TreeEntry{Path: key, Kind: KindOther, Err: err})
				return nil
			}
			result.add(&TreeEntry{
				Path:    key,
				Kind:    KindFile,
				Size:    info.Size(),
				ModTime: info.ModTime(),
			})

		default:
			// devices, sockets, pipes
			result.add(&TreeEntry{Path: key, Kind: KindOther})
		}

		return nil
	}

	if err := filepath.WalkDir(root, walkFn); err != nil {
		return nil, err
	}

	return result, nil
}
