package headless

import (
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/process"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/session"
)

// newStreamObserver connects a session to the console
func newStreamObserver(output *Output, showProgress bool) session.Observer {
	return session.ObserverFuncs{
		State: func(state process.State) {
			switch state {
			case process.StateSending:
				output.Reset()
			case process.StateIdle:
				output.EndAnswer()
			}
		},
		Progress: func(text string) {
			if showProgress {
				output.Progress(text)
			}
		},
		Preview: output.Preview,
	}
}
