package constants

// NSQ topics carrying table-change events for the relational backend.
// Consumers refetch the affected collection on every event.
const (
	TopicPropertyChanged = "property.changed"
)
