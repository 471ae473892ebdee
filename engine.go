package camperpack

import (
	"context"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Engine orchestrates sync cycles against the remote endpoint. It is
// constructed once per process and passed by reference to whoever
// needs it; there is no ambient singleton.
//
// A cycle runs push → pull → merge → watermark. Failures abort the
// remaining steps and come back as a SyncResult value, never a panic:
// the queue is preserved verbatim on push failure and retried on the
// next cycle (at-least-once delivery).
type Engine struct {
	store  *Store
	remote RemoteClient
	logger *log.Logger

	online atomic.Bool

	// cycleMu enforces at-most-one concurrent sync cycle. A request
	// arriving while one is in flight is rejected, not interleaved:
	// two concurrent cycles would race on mark-synced/purge and could
	// double-push or lose queue entries.
	cycleMu sync.Mutex
}

// NewEngine creates a sync engine. remote may be nil for offline-only
// operation. If logger is nil, a default logger writing to stderr is used.
func NewEngine(store *Store, remote RemoteClient, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	e := &Engine{store: store, remote: remote, logger: logger}
	e.online.Store(remote != nil)
	return e
}

// Online reports the last connectivity state delivered to the engine.
func (e *Engine) Online() bool {
	return e.online.Load()
}

// SetOnline records a connectivity change. Returns true when this call
// is an offline→online transition, which callers use to trigger a cycle.
func (e *Engine) SetOnline(online bool) bool {
	if e.remote == nil {
		return false
	}
	was := e.online.Swap(online)
	return online && !was
}

// Sync runs one full cycle and reports the outcome. It never returns
// an error; all failures are folded into the result so UI code can
// always render a human-readable outcome.
func (e *Engine) Sync(ctx context.Context) SyncResult {
	start := time.Now()

	if e.remote == nil || !e.online.Load() {
		return SyncResult{Stage: StageGuard, Reason: ReasonOffline}
	}

	if !e.cycleMu.TryLock() {
		return SyncResult{Stage: StageGuard, Reason: ReasonBusy}
	}
	defer e.cycleMu.Unlock()

	result := e.cycle(ctx)
	result.Elapsed = time.Since(start)

	if result.Success {
		e.logger.Printf("sync complete: pushed %d, pulled %d", result.Pushed, result.Pulled)
	} else {
		e.logger.Printf("sync failed at %s: %s", result.Stage, result.Reason)
	}
	return result
}

func (e *Engine) cycle(ctx context.Context) SyncResult {
	// Push: drain the queue as a single ordered batch. Nothing is
	// marked synced unless transmission succeeds, so a failed push
	// leaves the queue identical for the next cycle.
	pending, err := e.store.Pending()
	if err != nil {
		return SyncResult{Stage: StagePush, Reason: err.Error()}
	}

	pushed := 0
	if len(pending) > 0 {
		changes := make([]Change, len(pending))
		for i, entry := range pending {
			changes[i] = ChangeFromEntry(entry)
		}

		if _, err := e.remote.PushChanges(ctx, changes); err != nil {
			return SyncResult{Stage: StagePush, Reason: err.Error()}
		}

		for _, entry := range pending {
			if err := e.store.MarkSynced(entry.ID); err != nil {
				return SyncResult{Stage: StagePush, Reason: err.Error()}
			}
		}
		if err := e.store.PurgeSynced(); err != nil {
			return SyncResult{Stage: StagePush, Reason: err.Error()}
		}
		pushed = len(pending)
	}

	// Pull the full dataset. A pushed batch is not rolled back when
	// pull fails; partial success is reported distinctly.
	dataset, err := e.remote.FetchDataset(ctx)
	if err != nil {
		return SyncResult{Stage: StagePull, Pushed: pushed, Reason: err.Error()}
	}

	// Merge: remote wins unconditionally for every record present in
	// the pull, with no field or timestamp arbitration. Records that
	// lack an id are rejected individually rather than aborting the
	// whole merge.
	pulled, skipped := 0, 0
	for _, kind := range ValidKinds() {
		for _, rec := range dataset.Records(kind) {
			if rec.ID() == "" {
				skipped++
				continue
			}
			if _, err := e.store.Put(kind, rec, false); err != nil {
				return SyncResult{Stage: StageMerge, Pushed: pushed, Pulled: pulled, Skipped: skipped, Reason: err.Error()}
			}
			pulled++
		}
	}

	if err := e.store.SetLastSync(time.Now()); err != nil {
		return SyncResult{Stage: StageMerge, Pushed: pushed, Pulled: pulled, Skipped: skipped, Reason: err.Error()}
	}

	return SyncResult{Success: true, Pushed: pushed, Pulled: pulled, Skipped: skipped}
}
