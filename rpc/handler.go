package rpc

// Handler receives activity events. Methods run on the client's loop
// goroutine, so they must not call back into the Client synchronously.
type Handler interface {
	OnJoin(secret string)
	OnSpectate(secret string)
	OnJoinRequest(request JoinRequest)
	OnInvite(invite Invite)
}

// HandlerFuncs is a Handler built from optional functions.
type HandlerFuncs struct {
	Join        func(secret string)
	Spectate    func(secret string)
	JoinRequest func(request JoinRequest)
	Invite      func(invite Invite)
}

func (h HandlerFuncs) OnJoin(secret string) {
	if h.Join != nil {
		h.Join(secret)
	}
}

func (h HandlerFuncs) OnSpectate(secret string) {
	if h.Spectate != nil {
		h.Spectate(secret)
	}
}

func (h HandlerFuncs) OnJoinRequest(request JoinRequest) {
	if h.JoinRequest != nil {
		h.JoinRequest(request)
	}
}

func (h HandlerFuncs) OnInvite(invite Invite) {
	if h.Invite != nil {
		h.Invite(invite)
	}
}

type noopHandler struct{}

func (noopHandler) OnJoin(string)             {}
func (noopHandler) OnSpectate(string)         {}
func (noopHandler) OnJoinRequest(JoinRequest) {}
func (noopHandler) OnInvite(Invite)           {}
