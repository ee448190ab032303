package sync

import (
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFileName is the name of the optional exclusion file read from the
// source root. It uses gitignore syntax.
const IgnoreFileName = ".syncvignore"

// defaultIgnoreLines are always excluded, on both the source and replica
// side, so the synchronizer's own files never show up in a diff.
var defaultIgnoreLines = []string{
	IgnoreFileName,
	".syncv.lock",
	".DS_Store",
	"Thumbs.db",
}

// IgnoreList filters paths out of a scan. The same list is applied to the
// source and the replica scans, so an ignored path is neither copied nor
// deleted.
type IgnoreList struct {
	matcher *gitignore.GitIgnore
}

// LoadIgnoreList builds the ignore list for a source root, combining the
// built-in defaults with the root's ignore file when one exists.
func LoadIgnoreList(sourceRoot string) (*IgnoreList, error) {
	lines := make([]string, 0, len(defaultIgnoreLines))
	lines = append(lines, defaultIgnoreLines...)

	data, err := os.ReadFile(filepath.Join(sourceRoot, IgnoreFileName))
	if err == nil {
		lines = append(lines, strings.Split(string(data), "\n")...)
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	return &IgnoreList{
		matcher: gitignore.CompileIgnoreLines(lines...),
	}, nil
}

// Match reports whether the path key is excluded from syncing.
func (l *IgnoreList) Match(relPath string, isDir bool) bool {
	if l == nil || l.matcher == nil {
		return false
	}
	if l.matcher.MatchesPath(relPath) {
		return true
	}
	// dir-only patterns ("logs/") need the trailing slash to match
	return isDir && l.matcher.MatchesPath(relPath+"/")
}
