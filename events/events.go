package events

var (
	ValidatorConnected    = &FeedOf[struct{}]{} // The validator client dialed its endpoint.
	ValidatorDisconnected = &FeedOf[error]{}    // The validator connection dropped, with the cause.
)
