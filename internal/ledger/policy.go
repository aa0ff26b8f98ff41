package ledger

// RetryPolicy decides when an existing entry blocks an identity from being
// processed again. The two loops deliberately differ here: the inbox watcher
// re-lists a failed file on every scan until a run succeeds, while the
// meeting poller never revisits a meeting once any attempt was recorded.
// Unifying the two would silently change ingestion behavior.
type RetryPolicy int

const (
	// RetryOnEveryCycleUntilSuccess blocks an identity only once an entry
	// with success=true exists. Failed attempts stay eligible.
	RetryOnEveryCycleUntilSuccess RetryPolicy = iota

	// RetryNeverOnceAttempted blocks an identity as soon as any entry
	// exists, regardless of outcome.
	RetryNeverOnceAttempted
)

func (p RetryPolicy) String() string {
	switch p {
	case RetryOnEveryCycleUntilSuccess:
		return "retry-until-success"
	case RetryNeverOnceAttempted:
		return "retry-never"
	default:
		return "unknown"
	}
}
