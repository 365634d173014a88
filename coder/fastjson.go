package coder

import (
	gojson "github.com/goccy/go-json"
)

type fastJSONCoder struct {
	fallback   Fallback
	hook       DecodeHook
	encodeOpts []gojson.EncodeOptionFunc
	decodeOpts []gojson.DecodeOptionFunc
}

var _ Coder = (*fastJSONCoder)(nil)

// FastJSONOption configures the fast JSON coder.
type FastJSONOption func(*fastJSONCoder)

// WithFastFallback sets the conversion applied when a value cannot be
// represented as JSON directly.
func WithFastFallback(f Fallback) FastJSONOption {
	return func(c *fastJSONCoder) { c.fallback = f }
}

// WithFastDecodeHook sets a transform applied to stored bytes before
// parsing.
func WithFastDecodeHook(h DecodeHook) FastJSONOption {
	return func(c *fastJSONCoder) { c.hook = h }
}

// WithEncodeOptions passes serializer flags through to the encoder,
// e.g. gojson.DisableHTMLEscape or gojson.UnorderedMap.
func WithEncodeOptions(opts ...gojson.EncodeOptionFunc) FastJSONOption {
	return func(c *fastJSONCoder) { c.encodeOpts = append(c.encodeOpts, opts...) }
}

// WithDecodeOptions passes serializer flags through to the decoder.
func WithDecodeOptions(opts ...gojson.DecodeOptionFunc) FastJSONOption {
	return func(c *fastJSONCoder) { c.decodeOpts = append(c.decodeOpts, opts...) }
}

// NewFastJSON returns a Coder with the same contract as [NewJSON] but
// backed by goccy/go-json. Output is wire-compatible with the standard
// JSON coder, so the two can be mixed across readers and writers.
func NewFastJSON(opts ...FastJSONOption) Coder {
	c := &fastJSONCoder{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *fastJSONCoder) Name() string { return "fastjson" }

func (c *fastJSONCoder) Marshal(v any) ([]byte, error) {
	data, err := gojson.MarshalWithOption(v, c.encodeOpts...)
	if err == nil {
		return data, nil
	}
	if c.fallback != nil {
		sub, ferr := c.fallback(v)
		if ferr != nil {
			return nil, &EncodeError{Coder: c.Name(), Value: v, Err: ferr}
		}
		if data, err = gojson.MarshalWithOption(sub, c.encodeOpts...); err == nil {
			return data, nil
		}
	}
	return nil, &EncodeError{Coder: c.Name(), Value: v, Err: err}
}

func (c *fastJSONCoder) Unmarshal(data []byte, v any) error {
	if c.hook != nil {
		var err error
		if data, err = c.hook(data); err != nil {
			return &DecodeError{Coder: c.Name(), Err: err}
		}
	}
	if isJSONNull(data) && decodeNull(v) {
		return nil
	}
	if err := gojson.UnmarshalWithOption(data, v, c.decodeOpts...); err != nil {
		return &DecodeError{Coder: c.Name(), Err: err}
	}
	return nil
}
