package stream

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Sentinel is the reserved token marking a message boundary in the wire
// protocol. It never appears as a real word inside a message.
const Sentinel = "--END_CHUNK--"

// TokenSeparator splits decoded text into tokens
const TokenSeparator = " "

// TrailingPolicy decides what happens to the pending partial token when the
// stream ends without a trailing separator.
type TrailingPolicy int

const (
	// TrailingFlush emits the pending text as a final token
	TrailingFlush TrailingPolicy = iota
	// TrailingDrop discards it
	TrailingDrop
)

func (p TrailingPolicy) String() string {
	switch p {
	case TrailingFlush:
		return "flush"
	case TrailingDrop:
		return "drop"
	default:
		return "unknown"
	}
}

// DecoderOption configures a Decoder
type DecoderOption func(*Decoder)

// WithTrailingToken sets the end-of-stream policy for the pending token
func WithTrailingToken(p TrailingPolicy) DecoderOption {
	return func(d *Decoder) {
		d.trailing = p
	}
}

// Decoder turns raw byte chunks into complete space-delimited tokens. It
// never splits a multi-byte character and never emits a token that the next
// chunk could still extend.
type Decoder struct {
	utf8     transform.Transformer
	raw      []byte // bytes of an incomplete trailing character
	pending  string
	trailing TrailingPolicy
}

// NewDecoder creates a decoder with an empty pending buffer
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{
		utf8: unicode.UTF8.NewDecoder(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Feed appends a chunk and returns the tokens it completes, in order
func (d *Decoder) Feed(chunk []byte) []string {
	return d.split(d.decode(chunk, false))
}

// Flush ends the stream. Any incomplete character is decoded as U+FFFD and
// the pending token is emitted or dropped according to the trailing policy.
// The decoder is empty afterwards and may be reused.
func (d *Decoder) Flush() []string {
	tokens := d.split(d.decode(nil, true))

	tail := d.pending
	d.pending = ""
	d.utf8.Reset()

	if d.trailing == TrailingFlush && tail != "" {
		tokens = append(tokens, tail)
	}
	return tokens
}

// Pending returns the partial token carried to the next chunk
func (d *Decoder) Pending() string {
	return d.pending
}

// Policy reports the trailing token policy in effect
func (d *Decoder) Policy() TrailingPolicy {
	return d.trailing
}

// decode runs the chunk through the incremental UTF-8 decoder. Trailing bytes
// of a character that is not complete yet are kept for the next call.
func (d *Decoder) decode(chunk []byte, atEOF bool) string {
	src := append(d.raw, chunk...)
	d.raw = nil
	if len(src) == 0 {
		return ""
	}

	var out strings.Builder
	// Worst case every byte becomes a 3-byte replacement character
	dst := make([]byte, 3*len(src)+utf8.UTFMax)

	for {
		nDst, nSrc, err := d.utf8.Transform(dst, src, atEOF)
		out.Write(dst[:nDst])
		src = src[nSrc:]

		if err == transform.ErrShortDst {
			continue
		}
		if err == transform.ErrShortSrc {
			d.raw = append([]byte(nil), src...)
		}
		return out.String()
	}
}

// split appends decoded text to the pending buffer and releases every part
// except the last, which may still grow.
func (d *Decoder) split(text string) []string {
	if text == "" {
		return nil
	}

	parts := strings.Split(d.pending+text, TokenSeparator)
	d.pending = parts[len(parts)-1]
	return parts[:len(parts)-1]
}
