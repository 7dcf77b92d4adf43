package runstore

// Hooks are lightweight callbacks for high-signal store events.
// Implementations MUST be cheap and non-blocking; wrap with hooks/async to
// offload.
type Hooks interface {
	// An entry was deleted on read.
	// reason ∈ {"corrupt", "format_mismatch", "gen_mismatch", "value_decode"}
	SelfHeal(storageKey, reason string)

	// Provider returned ok=false on Set (backpressure or size limit).
	ProviderSetRejected(storageKey string)

	GenSnapshotError(storageKey string, err error)
	GenBumpError(storageKey string, err error)

	// Both the gen bump and the delete failed during Invalidate.
	InvalidateOutage(id string, bumpErr, delErr error)
}

type NopHooks struct{}

func (NopHooks) SelfHeal(string, string)               {}
func (NopHooks) ProviderSetRejected(string)            {}
func (NopHooks) GenSnapshotError(string, error)        {}
func (NopHooks) GenBumpError(string, error)            {}
func (NopHooks) InvalidateOutage(string, error, error) {}
