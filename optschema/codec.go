package optschema

import (
	"github.com/unkn0wn-root/optwire"
	c "github.com/unkn0wn-root/optwire/codec"
)

// MaxDocumentSize bounds decoded job documents. SBML model text dominates
// their size; 32 MiB covers large models with room to spare.
const MaxDocumentSize = 32 << 20

// JobCodec converts Job values to and from bytes through a tree codec.
type JobCodec struct {
	doc optwire.DocumentCodec
}

var _ c.Codec[Job] = JobCodec{}

// NewJobCodec returns a JobCodec using engine e (nil means the default
// lenient engine) over tree (nil means JSON text). Decoding refuses payloads
// larger than MaxDocumentSize.
func NewJobCodec(e optwire.Engine, tree c.Codec[any]) JobCodec {
	if tree == nil {
		tree = c.JSON[any]{}
	}
	limited := c.Limit[any]{Inner: tree, MaxDecode: MaxDocumentSize}
	return JobCodec{doc: optwire.NewDocumentCodec(e, Run(), limited)}
}

// Document exposes the untyped codec, e.g. for a run store.
func (jc JobCodec) Document() optwire.DocumentCodec { return jc.doc }

func (jc JobCodec) Encode(j Job) ([]byte, error) {
	return jc.doc.Encode(j.Native())
}

func (jc JobCodec) Decode(b []byte) (Job, error) {
	v, err := jc.doc.Decode(b)
	if err != nil {
		return Job{}, err
	}
	return JobFromNative(v)
}

var jsonJobs = NewJobCodec(nil, nil)

// DecodeJob parses a JSON job document.
func DecodeJob(b []byte) (Job, error) { return jsonJobs.Decode(b) }

// EncodeJob renders j as a JSON job document.
func EncodeJob(j Job) ([]byte, error) { return jsonJobs.Encode(j) }
