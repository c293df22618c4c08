package proto

// Handler receives dispatched events with their raw data. It is called from
// the read loop and must not block.
type Handler interface {
	OnEvent(eventType EventType, data []byte)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(eventType EventType, data []byte)

func (f HandlerFunc) OnEvent(eventType EventType, data []byte) {
	f(eventType, data)
}

type discardHandler struct{}

func (discardHandler) OnEvent(EventType, []byte) {}
