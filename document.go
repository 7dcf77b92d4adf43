package optwire

import (
	c "github.com/unkn0wn-root/optwire/codec"
	"github.com/unkn0wn-root/optwire/shape"
)

// DocumentCodec is a codec.Codec[any] for native values of one root shape:
// bytes go through a tree codec (JSON text, CBOR, ...) and then the engine.
type DocumentCodec struct {
	engine Engine
	root   shape.Shape
	tree   c.Codec[any]
}

var _ c.Codec[any] = DocumentCodec{}

// NewDocumentCodec binds an engine, a root shape and a tree codec.
// A nil engine means the default lenient engine; a nil tree codec means JSON.
func NewDocumentCodec(e Engine, root shape.Shape, tree c.Codec[any]) DocumentCodec {
	if e == nil {
		e = std
	}
	if tree == nil {
		tree = c.JSON[any]{}
	}
	return DocumentCodec{engine: e, root: root, tree: tree}
}

// Shape returns the root shape.
func (d DocumentCodec) Shape() shape.Shape { return d.root }

func (d DocumentCodec) Encode(v any) ([]byte, error) {
	tree, err := d.engine.TryEncode(d.root, v)
	if err != nil {
		return nil, err
	}
	return d.tree.Encode(tree)
}

func (d DocumentCodec) Decode(b []byte) (any, error) {
	tree, err := d.tree.Decode(b)
	if err != nil {
		return nil, err
	}
	return d.engine.Decode(d.root, tree)
}
