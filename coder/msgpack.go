package coder

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

type msgpackCoder struct {
	structTag string
}

var _ Coder = (*msgpackCoder)(nil)

// MsgpackOption configures the msgpack coder.
type MsgpackOption func(*msgpackCoder)

// WithStructTag sets an alternative struct tag consulted for field names,
// e.g. "json" to share tags with the JSON coders. Both sides of a
// round-trip must use the same tag — stored bytes are not portable
// across differing tag configurations.
func WithStructTag(tag string) MsgpackOption {
	return func(c *msgpackCoder) { c.structTag = tag }
}

// NewMsgpack returns a Coder backed by msgpack. The binary form preserves
// structure natively, so no post-decode reconstruction step is needed.
// Funcs, channels, and complex numbers are not representable.
func NewMsgpack(opts ...MsgpackOption) Coder {
	c := &msgpackCoder{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *msgpackCoder) Name() string { return "msgpack" }

func (c *msgpackCoder) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if c.structTag != "" {
		enc.SetCustomStructTag(c.structTag)
	}
	if err := enc.Encode(v); err != nil {
		return nil, &EncodeError{Coder: c.Name(), Value: v, Err: err}
	}
	return buf.Bytes(), nil
}

func (c *msgpackCoder) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	if c.structTag != "" {
		dec.SetCustomStructTag(c.structTag)
	}
	if err := dec.Decode(v); err != nil {
		return &DecodeError{Coder: c.Name(), Err: err}
	}
	return nil
}
