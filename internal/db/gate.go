package db

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"
)

var ErrPoolTimeout = errors.New("timed out waiting for a database connection")

const (
	gatePluginName  = "hms:acquire_gate"
	gateAcquiredKey = "hms:acquire_gate:acquired"
)

// Gate bounds the pooled connections checked out of one connection handle.
// A caller that cannot enter within the timeout fails with ErrPoolTimeout.
// A transaction holds its slot from Begin until it ends, so statements
// running on a transaction never take a second one.
type Gate struct {
	sem       *semaphore.Weighted
	timeout   time.Duration
	onTimeout func()
}

func NewGate(size int64, timeout time.Duration, onTimeout func()) *Gate {
	if onTimeout == nil {
		onTimeout = func() {}
	}

	return &Gate{
		sem:       semaphore.NewWeighted(size),
		timeout:   timeout,
		onTimeout: onTimeout,
	}
}

// Acquire waits for a free slot. Cancellation of ctx is returned as is.
func (g *Gate) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	err := g.sem.Acquire(waitCtx, 1)
	if err == nil {
		return nil
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	g.onTimeout()

	return ErrPoolTimeout
}

func (g *Gate) Release() {
	g.sem.Release(1)
}

// Name implements gorm.Plugin.
func (g *Gate) Name() string {
	return gatePluginName
}

// Initialize implements gorm.Plugin. Writes hold the slot across their
// default transaction, so association saves run on it. Reads give it back
// before preloading, which checks out a connection of its own.
func (g *Gate) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	acquire := gatePluginName + ":acquire"
	release := gatePluginName + ":release"

	return errors.Join(
		cb.Create().Before("gorm:begin_transaction").Register(acquire, g.acquire),
		cb.Create().After("gorm:commit_or_rollback_transaction").Register(release, g.release),
		cb.Update().Before("gorm:begin_transaction").Register(acquire, g.acquire),
		cb.Update().After("gorm:commit_or_rollback_transaction").Register(release, g.release),
		cb.Delete().Before("gorm:begin_transaction").Register(acquire, g.acquire),
		cb.Delete().After("gorm:commit_or_rollback_transaction").Register(release, g.release),
		cb.Query().Before("gorm:query").Register(acquire, g.acquire),
		cb.Query().After("gorm:query").Before("gorm:preload").Register(release, g.release),
		cb.Row().Before("gorm:row").Register(acquire, g.acquire),
		cb.Row().After("gorm:row").Register(release, g.release),
		cb.Raw().Before("gorm:raw").Register(acquire, g.acquire),
		cb.Raw().After("gorm:raw").Register(release, g.release),
	)
}

func (g *Gate) acquire(tx *gorm.DB) {
	if tx.Error != nil || inTransaction(tx) {
		return
	}

	err := g.Acquire(tx.Statement.Context)
	if err != nil {
		_ = tx.AddError(err)
		return
	}

	tx.InstanceSet(gateAcquiredKey, true)
}

func (g *Gate) release(tx *gorm.DB) {
	acquired, ok := tx.InstanceGet(gateAcquiredKey)
	if !ok {
		return
	}

	if held, _ := acquired.(bool); held {
		tx.InstanceSet(gateAcquiredKey, false)
		g.Release()
	}
}

// inTransaction reports whether tx runs on a connection a transaction
// already checked out.
func inTransaction(tx *gorm.DB) bool {
	_, ok := tx.Statement.ConnPool.(gorm.TxCommitter)
	return ok
}
