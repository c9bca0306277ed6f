package stream

// Handler is the contract a transport uses to deliver a live text stream.
// Callbacks for one stream never overlap: each call returns before the next
// one is made, and exactly one of OnComplete or OnError ends the stream.
type Handler interface {
	// OnChunk is called with each raw text fragment, in arrival order.
	// Fragments may split lines, or even multi-byte characters, anywhere.
	OnChunk(chunk string) error

	// OnComplete is called once the transport has delivered everything.
	OnComplete(finalContent string) error

	// OnError is called when the transport fails before completion.
	OnError(err error)
}

// HandlerFunc is a function adapter for Handler interface
type HandlerFunc struct {
	ChunkFunc    func(chunk string) error
	CompleteFunc func(finalContent string) error
	ErrorFunc    func(err error)
}

// OnChunk implements Handler
func (h HandlerFunc) OnChunk(chunk string) error {
	if h.ChunkFunc != nil {
		return h.ChunkFunc(chunk)
	}
	return nil
}

// OnComplete implements Handler
func (h HandlerFunc) OnComplete(finalContent string) error {
	if h.CompleteFunc != nil {
		return h.CompleteFunc(finalContent)
	}
	return nil
}

// OnError implements Handler
func (h HandlerFunc) OnError(err error) {
	if h.ErrorFunc != nil {
		h.ErrorFunc(err)
	}
}

// Ensure HandlerFunc implements Handler
var _ Handler = HandlerFunc{}
