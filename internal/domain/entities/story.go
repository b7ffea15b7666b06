package entities

// Story represents a narrative arc items can be attached to.
type Story struct {
	ID         string `json:"id"`
	TimelineID string `json:"timeline_id"`
	Title      string `json:"title"`
}
