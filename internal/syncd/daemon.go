// Package syncd runs the synchronization loop around the sync core: one
// pass immediately, then one per interval, serially. Scheduling lives
// here so the core stays a single synchronous "run one pass" operation.
package syncd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"

	"github.com/gmurga/syncv/internal/history"
	"github.com/gmurga/syncv/internal/sync"
	"github.com/gmurga/syncv/internal/syncd/config"
	"github.com/gmurga/syncv/internal/utils"
)

const (
	lockFileName = ".syncv.lock"

	// watcher events are coalesced for this long before an extra pass
	watchDebounce = 500 * time.Millisecond
)

var ErrReplicaLocked = errors.New("replica locked by another syncv instance")

type Daemon struct {
	cfg     *config.Config
	syncer  *sync.Syncer
	history *history.Store
	watcher *sync.Watcher
	flock   *flock.Flock

	round int
}

func New(cfg *config.Config) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// the replica root is created when missing; a bad source stays a
	// ConfigError from the syncer
	replicaDir, err := utils.ResolvePath(cfg.ReplicaDir)
	if err != nil {
		return nil, err
	}
	if err := utils.EnsureDir(replicaDir); err != nil {
		return nil, fmt.Errorf("create replica %q: %w", replicaDir, err)
	}

	var detector sync.Detector
	if cfg.Detect == config.DetectContent {
		if detector, err = sync.NewContentDetector(); err != nil {
			return nil, err
		}
	}

	syncer, err := sync.New(cfg.SourceDir, replicaDir, sync.Options{Detector: detector})
	if err != nil {
		return nil, err
	}

	d := &Daemon{
		cfg:    cfg,
		syncer: syncer,
		flock:  flock.New(filepath.Join(syncer.ReplicaDir(), lockFileName)),
	}

	if cfg.HistoryDB != "" {
		if d.history, err = history.Open(cfg.HistoryDB); err != nil {
			return nil, fmt.Errorf("open history db: %w", err)
		}
	}
	if cfg.Watch {
		d.watcher = sync.NewWatcher(syncer.SourceDir())
	}

	return d, nil
}

// Run executes the pass loop until the context is cancelled. With a zero
// interval it runs a single pass and returns.
func (d *Daemon) Run(ctx context.Context) error {
	locked, err := d.flock.TryLock()
	if err != nil {
		return fmt.Errorf("lock replica: %w", err)
	}
	if !locked {
		return ErrReplicaLocked
	}
	defer func() {
		if err := d.flock.Unlock(); err == nil {
			os.Remove(d.flock.Path())
		}
	}()

	if d.history != nil {
		defer d.history.Close()
	}

	slog.Info("sync start",
		"source", d.syncer.SourceDir(),
		"replica", d.syncer.ReplicaDir(),
		"interval", d.cfg.Interval,
	)

	passErr := d.runPass(ctx)
	if ctx.Err() != nil {
		return passErr
	}

	if d.cfg.Interval <= 0 {
		slog.Info("single pass requested, stopping")
		return passErr
	}

	if d.watcher != nil {
		if err := d.watcher.Start(); err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		defer d.watcher.Stop()
	}

	// a timer instead of a ticker so a slow pass never queues up ticks
	timer := time.NewTimer(d.cfg.Interval)
	defer timer.Stop()

	debounce := time.NewTimer(time.Hour)
	debounce.Stop()
	defer debounce.Stop()

	var watchEvents <-chan struct{}
	if d.watcher != nil {
		watchEvents = relay(ctx, d.watcher)
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("sync stop")
			return nil

		case <-timer.C:
			d.runPass(ctx)
			timer.Reset(d.cfg.Interval)

		case <-watchEvents:
			debounce.Reset(watchDebounce)

		case <-debounce.C:
			d.runPass(ctx)
		}
	}
}

// runPass executes one pass. A root that cannot be scanned fails this
// pass only; the loop retries at the next tick.
func (d *Daemon) runPass(ctx context.Context) error {
	d.round++
	slog.Debug("pass begin", "round", d.round)

	result, err := d.syncer.RunPass(ctx)
	if err != nil {
		var accessErr *sync.AccessError
		if errors.As(err, &accessErr) {
			slog.Error("pass failed, will retry next round", "round", d.round, "error", err)
		} else {
			slog.Error("pass failed", "round", d.round, "error", err)
		}
		return err
	}

	d.logResult(result)

	if d.history != nil {
		if err := d.history.RecordPass(result); err != nil {
			slog.Error("record history", "error", err)
		}
	}
	return nil
}

func (d *Daemon) logResult(result *sync.PassResult) {
	for _, e := range result.Events {
		switch e.Status {
		case sync.StatusOK:
			slog.Info(e.Action.String(), "path", e.Path)
		case sync.StatusSkipped:
			slog.Warn("skip", "path", e.Path, "reason", e.Err)
		case sync.StatusFailed:
			slog.Error(e.Action.String()+" failed", "path", e.Path, "error", e.Err)
		}
	}

	slog.Info("pass done",
		"round", d.round,
		"took", result.Duration,
		"dirs_created", result.DirsCreated,
		"files_copied", result.FilesCopied,
		"files_updated", result.FilesUpdated,
		"files_deleted", result.FilesDeleted,
		"dirs_deleted", result.DirsDeleted,
		"skipped", result.Skipped,
		"errors", result.Errors,
		"copied", humanize.Bytes(uint64(result.BytesCopied)),
	)
}

// relay pumps watcher notifications into a signal channel the select
// loop can coalesce.
func relay(ctx context.Context, watcher *sync.Watcher) <-chan struct{} {
	signals := make(chan struct{}, 1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Events():
				if !ok {
					return
				}
				select {
				case signals <- struct{}{}:
				default:
				}
			}
		}
	}()
	return signals
}
