package ingress

import "errors"

// Ingress error taxonomy. Use errors.Is() to check for these errors in
// calling code.
var (
	// ErrMalformed is returned when an inbound payload cannot be
	// decoded. The message is dropped and counted; the stream carries
	// on.
	ErrMalformed = errors.New("ingress: malformed payload dropped")

	// ErrUnroutedTopic is returned when a message arrives on a topic
	// the router has no route for.
	ErrUnroutedTopic = errors.New("ingress: no route for topic")
)
