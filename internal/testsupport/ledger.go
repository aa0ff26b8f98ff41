package testsupport

import (
	"testing"

	"inlet/internal/ledger"
)

// MustOpenLedger opens a ledger.Store for tests and registers cleanup.
func MustOpenLedger(t testing.TB, path string, policy ledger.RetryPolicy) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(path, policy, nil)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
