package optwire

// Hooks are lightweight callbacks for high-signal codec events.
// Implementations MUST be cheap and non-blocking; the engine calls them
// synchronously on the decode path. Wrap with hooks/async to offload.
type Hooks interface {
	// A top-level Decode failed. shape is the root shape's type expression,
	// path the location of the offending value.
	DecodeFailed(shape string, kind ErrorKind, path string)

	// A timestamp carried second 60 and was clamped to 59.
	LeapSecondClamped(path string)

	// A field marked required was absent or null and the Missing sentinel was
	// substituted. With RequireFields on this only fires for null.
	RequiredFieldMissing(record, key string)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) DecodeFailed(string, ErrorKind, string) {}
func (NopHooks) LeapSecondClamped(string)               {}
func (NopHooks) RequiredFieldMissing(string, string)    {}
