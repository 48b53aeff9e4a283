package events

// MethodTip is the feed method for tip events, the only kind we act on.
const MethodTip = "tip"

// Feed is one long-poll response from the events API.
type Feed struct {
	Events  []Event `json:"events"`
	NextURL string  `json:"nextUrl"`
}

// Event is a single feed record. Object fields are pointers because the
// API only populates the ones relevant to the method.
type Event struct {
	Method string `json:"method"`
	Object Object `json:"object"`
	ID     string `json:"id"`
}

type Object struct {
	Broadcaster string `json:"broadcaster"`
	Tip         *Tip   `json:"tip,omitempty"`
	User        *User  `json:"user,omitempty"`
}

type Tip struct {
	Tokens  int    `json:"tokens"`
	Message string `json:"message"`
	IsAnon  bool   `json:"isAnon"`
}

type User struct {
	Username string `json:"username"`
}
