package sync

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/gmurga/syncv/internal/utils"
)

// Syncer runs one-way synchronization passes from a source tree to a
// replica tree. Each pass re-derives all state from the filesystem, so a
// crashed or interrupted pass is corrected by the next one.
type Syncer struct {
	sourceDir  string
	replicaDir string
	ignore     *IgnoreList
	detector   Detector
}

// Options configures a Syncer beyond its two roots.
type Options struct {
	// Ignore filters paths out of both scans. Nil means defaults only.
	Ignore *IgnoreList

	// Detector selects the change-detection policy. Nil means
	// (size, mtime) comparison.
	Detector Detector
}

// New validates the two roots and returns a Syncer. Both roots must
// exist and be directories, and neither may contain the other; anything
// else is a *ConfigError.
func New(sourceDir, replicaDir string, opts Options) (*Syncer, error) {
	source, err := utils.ResolvePath(sourceDir)
	if err != nil {
		return nil, &ConfigError{Root: sourceDir, Err: err}
	}
	replica, err := utils.ResolvePath(replicaDir)
	if err != nil {
		return nil, &ConfigError{Root: replicaDir, Err: err}
	}

	if !utils.DirExists(source) {
		return nil, &ConfigError{Root: source, Err: errors.New("source is not a directory")}
	}
	if !utils.DirExists(replica) {
		return nil, &ConfigError{Root: replica, Err: errors.New("replica is not a directory")}
	}
	if err := checkDisjoint(source, replica); err != nil {
		return nil, err
	}

	ignore := opts.Ignore
	if ignore == nil {
		if ignore, err = LoadIgnoreList(source); err != nil {
			return nil, &ConfigError{Root: source, Err: err}
		}
	}

	return &Syncer{
		sourceDir:  source,
		replicaDir: replica,
		ignore:     ignore,
		detector:   opts.Detector,
	}, nil
}

func (s *Syncer) SourceDir() string  { return s.sourceDir }
func (s *Syncer) ReplicaDir() string { return s.replicaDir }

// Plan scans both trees and computes the action plan without touching
// the replica.
func (s *Syncer) Plan(ctx context.Context) (*Plan, error) {
	sourceScan, err := Scan(ctx, s.sourceDir, s.ignore)
	if err != nil {
		return nil, err
	}
	replicaScan, err := Scan(ctx, s.replicaDir, s.ignore)
	if err != nil {
		return nil, err
	}
	return Diff(sourceScan, replicaScan, DiffOptions{Detector: s.detector}), nil
}

// RunPass executes one full scan-diff-apply pass. A root that cannot be
// scanned fails the pass with an *AccessError and nothing is applied;
// individual action failures are reported inside the result instead.
func (s *Syncer) RunPass(ctx context.Context) (*PassResult, error) {
	plan, err := s.Plan(ctx)
	if err != nil {
		return nil, err
	}
	return Apply(ctx, plan), nil
}

// checkDisjoint rejects equal or nested roots: mirroring a tree into
// itself never converges.
func checkDisjoint(source, replica string) error {
	rel, err := filepath.Rel(source, replica)
	if err == nil {
		if rel == "." {
			return &ConfigError{Root: replica, Err: errors.New("source and replica are the same directory")}
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return &ConfigError{Root: replica, Err: errors.New("replica is inside the source tree")}
		}
	}
	rel, err = filepath.Rel(replica, source)
	if err == nil && rel != ".." && rel != "." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return &ConfigError{Root: source, Err: errors.New("source is inside the replica tree")}
	}
	return nil
}
