package stream

import (
	"context"
	"io"
)

// DefaultReadSize is the chunk size used when none is configured
const DefaultReadSize = 4096

// ReadTokens drains r chunk by chunk through dec and hands every token to h
// in arrival order. It returns nil once the stream ended and h.OnComplete
// succeeded, ctx.Err() if the context was cancelled, or a *StreamReadError
// when r fails.
func ReadTokens(ctx context.Context, r io.Reader, dec *Decoder, readSize int, h Handler) error {
	if readSize <= 0 {
		readSize = DefaultReadSize
	}
	buf := make([]byte, readSize)

	emit := func(tokens []string) error {
		for _, tok := range tokens {
			if err := h.OnToken(tok); err != nil {
				return err
			}
		}
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := r.Read(buf)
		if n > 0 {
			if herr := emit(dec.Feed(buf[:n])); herr != nil {
				return herr
			}
		}

		if err == io.EOF {
			if herr := emit(dec.Flush()); herr != nil {
				return herr
			}
			return h.OnComplete()
		}
		if err != nil {
			// A cancelled request surfaces as a read error on the body
			if ctx.Err() != nil {
				return ctx.Err()
			}
			readErr := &StreamReadError{Err: err}
			h.OnError(readErr)
			return readErr
		}
	}
}
