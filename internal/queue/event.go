// Package queue carries tasting activity over RabbitMQ: the server publishes
// a TastingEvent after each successful write and the consumer appends one
// line per event to an activity log.
package queue

// Actions recorded in TastingEvent.Action.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TastingEvent is published after a tasting is created, updated or deleted.
// It contains enough to write an audit line without querying the database.
type TastingEvent struct {
	Action         string  `json:"action"`
	TastingID      uint64  `json:"tasting_id"`
	UserID         uint64  `json:"user_id"`
	StoreName      string  `json:"store_name"`
	Date           string  `json:"date"`
	BottlesSold    int     `json:"bottles_sold"`
	TastingsPoured int     `json:"tastings_poured"`
	Conversion     float64 `json:"conversion"`
	OccurredAt     string  `json:"occurred_at"`
}
