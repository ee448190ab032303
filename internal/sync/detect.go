package sync

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gmurga/syncv/internal/utils"
)

// Detector decides whether a file present on both sides needs to be
// copied again.
type Detector interface {
	Modified(src, replica *TreeEntry, srcAbs, replicaAbs string) (bool, error)
}

// ModTimeDetector is the default policy: a file changed iff its size or
// modification time differs. Cheap, but a same-size same-mtime content
// change goes unnoticed.
type ModTimeDetector struct{}

func (ModTimeDetector) Modified(src, replica *TreeEntry, _, _ string) (bool, error) {
	return src.Size != replica.Size || !src.ModTime.Equal(replica.ModTime), nil
}

const defaultHashCacheSize = 4096

type hashKey struct {
	path    string
	size    int64
	modTime int64
}

// ContentDetector is the stricter policy: matching size and mtime still
// short-circuits to unchanged, but any metadata difference is settled by
// comparing MD5 digests of both files. Digests are memoized per
// (path, size, mtime), so an unchanged file is hashed at most once across
// passes.
type ContentDetector struct {
	cache *lru.Cache[hashKey, string]
}

func NewContentDetector() (*ContentDetector, error) {
	cache, err := lru.New[hashKey, string](defaultHashCacheSize)
	if err != nil {
		return nil, err
	}
	return &ContentDetector{cache: cache}, nil
}

func (d *ContentDetector) Modified(src, replica *TreeEntry, srcAbs, replicaAbs string) (bool, error) {
	if src.Size == replica.Size && src.ModTime.Equal(replica.ModTime) {
		return false, nil
	}

	srcSum, err := d.hash(srcAbs, src)
	if err != nil {
		return true, err
	}
	replicaSum, err := d.hash(replicaAbs, replica)
	if err != nil {
		return true, err
	}
	return srcSum != replicaSum, nil
}

func (d *ContentDetector) hash(absPath string, e *TreeEntry) (string, error) {
	key := hashKey{path: absPath, size: e.Size, modTime: e.ModTime.UnixNano()}
	if sum, ok := d.cache.Get(key); ok {
		return sum, nil
	}

	sum, err := utils.FileHash(absPath)
	if err != nil {
		return "", err
	}
	d.cache.Add(key, sum)
	return sum, nil
}
