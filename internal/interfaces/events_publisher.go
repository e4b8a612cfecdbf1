package interfaces

// EventPublisher delivers a domain event to subscribers on the given
// topic. Publication is decoupled from the operation's return value;
// the state mutation has already committed by the time Publish runs.
type EventPublisher interface {
	Publish(topic string, event any) error
}
