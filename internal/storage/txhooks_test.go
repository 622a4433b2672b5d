package storage

import (
	"errors"
	"testing"
)

func TestTxHooksCommitOrder(t *testing.T) {
	hooks := NewTxHooks()

	var order []int
	hooks.AfterCommit(func() error { order = append(order, 1); return nil })
	hooks.AfterCommit(func() error { order = append(order, 2); return nil })
	hooks.AfterRollback(func() { t.Error("Rollback hook must not fire on commit") })

	if err := hooks.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("Expected commit hooks in registration order, got %v", order)
	}
}

func TestTxHooksCommitStopsAtFirstError(t *testing.T) {
	hooks := NewTxHooks()

	boom := errors.New("boom")
	ran := false
	hooks.AfterCommit(func() error { return boom })
	hooks.AfterCommit(func() error { ran = true; return nil })

	if err := hooks.Commit(); !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}
	if ran {
		t.Error("Hooks after a failing hook must not run")
	}
}

func TestTxHooksRollback(t *testing.T) {
	hooks := NewTxHooks()

	committed := false
	rolledBack := 0
	hooks.AfterCommit(func() error { committed = true; return nil })
	hooks.AfterRollback(func() { rolledBack++ })

	hooks.Rollback()
	if committed {
		t.Error("Commit hook must not fire on rollback")
	}
	if rolledBack != 1 {
		t.Errorf("Expected 1 rollback run, got %d", rolledBack)
	}
}

func TestTxHooksFireOnce(t *testing.T) {
	hooks := NewTxHooks()

	commits := 0
	rollbacks := 0
	hooks.AfterCommit(func() error { commits++; return nil })
	hooks.AfterRollback(func() { rollbacks++ })

	if err := hooks.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if err := hooks.Commit(); err != nil {
		t.Fatalf("Second Commit failed: %v", err)
	}
	hooks.Rollback()

	if commits != 1 {
		t.Errorf("Expected commit hooks to fire once, got %d", commits)
	}
	if rollbacks != 0 {
		t.Errorf("Rollback after Commit must be a no-op, got %d runs", rollbacks)
	}
}
