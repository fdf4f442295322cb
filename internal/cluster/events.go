package cluster

// Listener receives everything the presentation layer renders. Callbacks
// run while the controller lock is held: they must return quickly and must
// not call back into the Controller.
type Listener interface {
	OnOutputText(chunk string)
	OnStateChanged(state State)
	OnConnectError(message string)
	OnBookmarksChanged(keys []string)
	OnWarning(message string)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	OutputText       func(chunk string)
	StateChanged     func(state State)
	ConnectError     func(message string)
	BookmarksChanged func(keys []string)
	Warning          func(message string)
}

func (f ListenerFuncs) OnOutputText(chunk string) {
	if f.OutputText != nil {
		f.OutputText(chunk)
	}
}

func (f ListenerFuncs) OnStateChanged(state State) {
	if f.StateChanged != nil {
		f.StateChanged(state)
	}
}

func (f ListenerFuncs) OnConnectError(message string) {
	if f.ConnectError != nil {
		f.ConnectError(message)
	}
}

func (f ListenerFuncs) OnBookmarksChanged(keys []string) {
	if f.BookmarksChanged != nil {
		f.BookmarksChanged(keys)
	}
}

func (f ListenerFuncs) OnWarning(message string) {
	if f.Warning != nil {
		f.Warning(message)
	}
}

// NopListener discards every event.
type NopListener struct{}

func (NopListener) OnOutputText(string)         {}
func (NopListener) OnStateChanged(State)        {}
func (NopListener) OnConnectError(string)       {}
func (NopListener) OnBookmarksChanged([]string) {}
func (NopListener) OnWarning(string)            {}
