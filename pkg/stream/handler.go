package stream

// Handler receives the decoded tokens of one response stream
type Handler interface {
	// OnToken is called for every complete token, in arrival order.
	// Returning an error stops the read loop.
	OnToken(token string) error

	// OnComplete is called once after the last token of a stream that
	// ended normally.
	OnComplete() error

	// OnError is called when the byte source fails mid-read.
	OnError(err error)
}

// HandlerFunc is a function adapter for Handler interface
type HandlerFunc struct {
	TokenFunc    func(token string) error
	CompleteFunc func() error
	ErrorFunc    func(err error)
}

// OnToken implements Handler
func (h HandlerFunc) OnToken(token string) error {
	if h.TokenFunc != nil {
		return h.TokenFunc(token)
	}
	return nil
}

// OnComplete implements Handler
func (h HandlerFunc) OnComplete() error {
	if h.CompleteFunc != nil {
		return h.CompleteFunc()
	}
	return nil
}

// OnError implements Handler
func (h HandlerFunc) OnError(err error) {
	if h.ErrorFunc != nil {
		h.ErrorFunc(err)
	}
}

// Ensure implementations satisfy the interface
var _ Handler = HandlerFunc{}
