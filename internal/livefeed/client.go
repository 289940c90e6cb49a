package livefeed

// Client is one subscriber of the live moderation feed.
type Client interface {
	// ID identifies the subscriber, normally the reviewer's user id.
	ID() string
	// SendChannel is where the hub delivers events for this subscriber.
	SendChannel() chan<- Event
	// Run starts the client's pumps.
	Run()
	// Close stops delivery. The hub calls it once, when the client leaves or falls behind.
	Close()
}
