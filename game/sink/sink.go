// Package sink abstracts how game notices reach players on the chat
// platform.
//
// The session layer publishes notices (invites, board renders, results,
// timeouts) without knowing what delivers them: a websocket hub in this
// binary, the platform gateway in production, a recorder in tests. Publish
// is fire-and-forget from the caller's point of view — a failing sink is the
// collaborator's problem and must never alter game state — but it does
// return the platform's message ID synchronously so a session can reference
// its previous render when publishing the next one.
package sink

// Event classifies a notice for delivery formatting.
type Event string

const (
	EventInvited  Event = "invited"
	EventDeclined Event = "declined"
	EventCanceled Event = "canceled"
	EventStarted  Event = "started"
	EventMoved    Event = "moved"
	EventWon      Event = "won"
	EventDraw     Event = "draw"
	EventTimeout  Event = "timeout"
)

// Notice is one notification to deliver. Board carries a rendered grid when
// the notice reflects game state; ReplacesMessageID names the previous
// render to supersede, and may be empty when no prior render was captured.
type Notice struct {
	GameID            string
	Event             Event
	Recipients        []string
	Text              string
	Board             string
	Ephemeral         bool
	ReplacesMessageID string
}

// Notifier delivers notices. Publish returns the delivered message's ID, or
// an empty string when the transport has no durable message handles.
type Notifier interface {
	Publish(n Notice) (messageID string, err error)
}

// Func adapts a function to the Notifier interface.
type Func func(n Notice) (string, error)

func (f Func) Publish(n Notice) (string, error) {
	return f(n)
}

// Discard drops every notice. Useful as a default when no transport is wired.
var Discard Notifier = Func(func(Notice) (string, error) {
	return "", nil
})
