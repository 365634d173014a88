package coder

import (
	"encoding/json"
)

// Fallback converts a value the serializer cannot represent into one it
// can (for example, a store-specific identifier into its string form).
// Returning an error aborts the encode.
type Fallback func(v any) (any, error)

// DecodeHook post-processes raw stored bytes before they are parsed.
// It can rewrite tagged representations produced by a [Fallback].
type DecodeHook func(data []byte) ([]byte, error)

type jsonCoder struct {
	fallback Fallback
	hook     DecodeHook
}

var _ Coder = (*jsonCoder)(nil)

// JSONOption configures the JSON coder.
type JSONOption func(*jsonCoder)

// WithFallback sets the conversion applied when a value cannot be
// represented as JSON directly.
func WithFallback(f Fallback) JSONOption {
	return func(c *jsonCoder) { c.fallback = f }
}

// WithDecodeHook sets a transform applied to stored bytes before parsing.
func WithDecodeHook(h DecodeHook) JSONOption {
	return func(c *jsonCoder) { c.hook = h }
}

// NewJSON returns a Coder backed by encoding/json. Values must be
// representable as JSON (no funcs, channels, or complex numbers) unless a
// fallback is configured to convert them.
func NewJSON(opts ...JSONOption) Coder {
	c := &jsonCoder{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *jsonCoder) Name() string { return "json" }

func (c *jsonCoder) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err == nil {
		return data, nil
	}
	if c.fallback != nil {
		sub, ferr := c.fallback(v)
		if ferr != nil {
			return nil, &EncodeError{Coder: c.Name(), Value: v, Err: ferr}
		}
		if data, err = json.Marshal(sub); err == nil {
			return data, nil
		}
	}
	return nil, &EncodeError{Coder: c.Name(), Value: v, Err: err}
}

func (c *jsonCoder) Unmarshal(data []byte, v any) error {
	if c.hook != nil {
		var err error
		if data, err = c.hook(data); err != nil {
			return &DecodeError{Coder: c.Name(), Err: err}
		}
	}
	if isJSONNull(data) && decodeNull(v) {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &DecodeError{Coder: c.Name(), Err: err}
	}
	return nil
}
