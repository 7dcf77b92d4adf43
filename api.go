package optwire

import "github.com/unkn0wn-root/optwire/shape"

// Engine converts between JSON value trees and native value trees under the
// guidance of a shape. It holds no per-call state and is safe for concurrent
// use.
type Engine interface {
	// Decode validates a JSON value tree against s and returns the native tree.
	// Any failure aborts the whole decode with an *Error; no partial value is
	// returned.
	Decode(s shape.Shape, v any) (any, error)

	// Encode is the structural inverse of Decode. A value that does not match
	// s is a caller bug: Encode panics with a *ContractError.
	Encode(s shape.Shape, v any) any

	// TryEncode is Encode with the contract panic recovered into an error.
	TryEncode(s shape.Shape, v any) (any, error)
}

// Options tune an Engine. The zero value is a lenient, silent engine.
type Options struct {
	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // if nil, NopHooks is used

	// RequireFields makes an absent field marked Required fail with
	// MissingRequiredField. An explicit null still decodes to Missing. Off by
	// default: absent fields decode to Missing too.
	RequireFields bool
}

func New(opts Options) Engine {
	return &engine{
		log:           coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:         coalesce[Hooks](opts.Hooks, NopHooks{}),
		requireFields: opts.RequireFields,
	}
}

var std = New(Options{})

// Decode uses a default lenient engine.
func Decode(s shape.Shape, v any) (any, error) { return std.Decode(s, v) }

// Encode uses a default engine.
func Encode(s shape.Shape, v any) any { return std.Encode(s, v) }

// TryEncode uses a default engine.
func TryEncode(s shape.Shape, v any) (any, error) { return std.TryEncode(s, v) }
