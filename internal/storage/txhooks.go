package storage

// TxHooks is an explicit post-transaction callback list. File-system work
// that must track the fate of a database transaction is registered here and
// fired exactly once after the transaction settles: Commit hooks run only
// after a durable commit, Rollback hooks only after a rollback. The type is
// independent of any storage driver.
type TxHooks struct {
	commit   []func() error
	rollback []func()
	done     bool
}

// NewTxHooks creates an empty hook list
func NewTxHooks() *TxHooks {
	return &TxHooks{}
}

// AfterCommit registers fn to run after the transaction commits
func (h *TxHooks) AfterCommit(fn func() error) {
	h.commit = append(h.commit, fn)
}

// AfterRollback registers fn to run after the transaction rolls back
func (h *TxHooks) AfterRollback(fn func()) {
	h.rollback = append(h.rollback, fn)
}

// Commit runs the commit hooks in registration order, stopping at the first
// failure. It is a no-op after the hooks have fired once.
func (h *TxHooks) Commit() error {
	if h.done {
		return nil
	}
	h.done = true
	for _, fn := range h.commit {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

// Rollback runs the rollback hooks in registration order. It is a no-op
// after the hooks have fired once.
func (h *TxHooks) Rollback() {
	if h.done {
		return
	}
	h.done = true
	for _, fn := range h.rollback {
		fn()
	}
}
