// Package session provides per-session conversation state for the pipeline.
//
// Each session holds a bounded history of exchanges and the reserve set left
// over from the most recent retrieval. State lives for the session only;
// expiry is the responsibility of whatever supplies the session identity.
package session

// MaxHistory is the number of exchanges a session retains. Older exchanges
// are evicted from the front when the window overflows.
const MaxHistory = 5

// Exchange is one completed turn. Immutable once appended.
type Exchange struct {
	User string `json:"user"`
	Bot  string `json:"bot"`
}

// Session is a point-in-time copy of one session's state.
type Session struct {
	History []Exchange
	Reserve []string
}
