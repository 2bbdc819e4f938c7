// Package persist saves and loads trained models.
//
// A model is encoded as its snapshot, optionally compressed and wrapped in a
// small binary envelope:
//
//	magic "VMLP" | version | kind | compression | codec name | raw size | crc32 | payload
//
// The envelope is self-describing, so Load needs no options. Envelopes from
// a different format version are rejected with ErrIncompatibleVersion.
package persist

import (
	"context"
	"fmt"

	"github.com/hupe1980/vecml/blobstore"
	"github.com/hupe1980/vecml/boost"
	"github.com/hupe1980/vecml/codec"
	"github.com/hupe1980/vecml/kdtree"
	"github.com/hupe1980/vecml/learning"
	"github.com/hupe1980/vecml/som"
	"github.com/hupe1980/vecml/stump"
	"github.com/hupe1980/vecml/vq"
)

type options struct {
	codec       codec.Codec
	compression Compression
}

// Option configures encoding.
type Option func(*options)

// WithCodec selects the payload codec. Default: codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithCompression selects the payload compression. Default: CompressionZstd.
func WithCompression(c Compression) Option {
	return func(o *options) { o.compression = c }
}

// KindOf returns the envelope kind for a model, or ErrUnsupportedModel.
func KindOf(model any) (Kind, error) {
	switch model.(type) {
	case *kdtree.Tree:
		return KindKDTree, nil
	case *vq.Quantizer:
		return KindQuantizer, nil
	case *stump.Stump:
		return KindStump, nil
	case *boost.Classifier:
		return KindBoost, nil
	case *som.Map:
		return KindSOM, nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrUnsupportedModel, model)
	}
}

func snapshot(model any) (any, error) {
	switch m := model.(type) {
	case *kdtree.Tree:
		return m.Snapshot(), nil
	case *vq.Quantizer:
		return m.Snapshot()
	case *stump.Stump:
		return m.Snapshot(), nil
	case *boost.Classifier:
		return m.Snapshot()
	case *som.Map:
		return m.Snapshot(), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedModel, model)
	}
}

// Encode serializes a *kdtree.Tree, *vq.Quantizer, *stump.Stump,
// *boost.Classifier or *som.Map.
func Encode(model any, opts ...Option) ([]byte, error) {
	o := options{codec: codec.Default, compression: CompressionZstd}
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.codec.Name()) > 255 {
		return nil, fmt.Errorf("persist: codec name %q too long", o.codec.Name())
	}

	kind, err := KindOf(model)
	if err != nil {
		return nil, err
	}
	snap, err := snapshot(model)
	if err != nil {
		return nil, err
	}
	raw, err := o.codec.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}
	payload, used, err := compress(raw, o.compression)
	if err != nil {
		return nil, err
	}

	h := Header{
		Version:     Version,
		Kind:        kind,
		Compression: used,
		Codec:       o.codec.Name(),
		RawSize:     uint32(len(raw)),
		Checksum:    checksum(raw),
	}
	out := make([]byte, 0, h.size()+len(payload))
	out = h.appendTo(out)
	return append(out, payload...), nil
}

// Decode restores a model from an envelope. The concrete type follows the
// header kind.
func Decode(ctx context.Context, data []byte) (any, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}
	c, ok := codec.ByName(h.Codec)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, h.Codec)
	}
	raw, err := decompress(data[h.size():], h.Compression, int(h.RawSize))
	if err != nil {
		return nil, err
	}
	if len(raw) != int(h.RawSize) || checksum(raw) != h.Checksum {
		return nil, ErrChecksumMismatch
	}

	switch h.Kind {
	case KindKDTree:
		var s kdtree.Snapshot
		if err := c.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode %s: %w", h.Kind, err)
		}
		return kdtree.FromSnapshot(s)
	case KindQuantizer:
		var s vq.Snapshot
		if err := c.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode %s: %w", h.Kind, err)
		}
		return vq.FromSnapshot(ctx, s)
	case KindStump:
		var s stump.Snapshot
		if err := c.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode %s: %w", h.Kind, err)
		}
		return stump.FromSnapshot(s)
	case KindBoost:
		var s boost.Snapshot
		if err := c.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode %s: %w", h.Kind, err)
		}
		return boost.FromSnapshot(s)
	case KindSOM:
		var s som.Snapshot
		if err := c.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode %s: %w", h.Kind, err)
		}
		return som.FromSnapshot(s)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModel, h.Kind)
	}
}

// Save encodes model and writes it to store under name.
func Save(ctx context.Context, store blobstore.Store, name string, model any, opts ...Option) error {
	data, err := Encode(model, opts...)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, name, data); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

// Load reads and decodes the model stored under name.
func Load(ctx context.Context, store blobstore.Store, name string) (any, error) {
	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return Decode(ctx, data)
}

// LoadClassifier loads a model that can classify samples. A stored kd-tree
// is rejected with ErrKindMismatch.
func LoadClassifier(ctx context.Context, store blobstore.Store, name string) (learning.Classifier, error) {
	m, err := Load(ctx, store, name)
	if err != nil {
		return nil, err
	}
	c, ok := m.(learning.Classifier)
	if !ok {
		return nil, fmt.Errorf("%w: %s holds a %T", ErrKindMismatch, name, m)
	}
	return c, nil
}

// LoadTree loads a stored kd-tree.
func LoadTree(ctx context.Context, store blobstore.Store, name string) (*kdtree.Tree, error) {
	m, err := Load(ctx, store, name)
	if err != nil {
		return nil, err
	}
	t, ok := m.(*kdtree.Tree)
	if !ok {
		return nil, fmt.Errorf("%w: %s holds a %T", ErrKindMismatch, name, m)
	}
	return t, nil
}
