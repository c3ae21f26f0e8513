package events

import "time"

// NodeDiscoveredEvent is published once per aggregated node URI after a
// collection cycle.
type NodeDiscoveredEvent struct {
	URI          string    `json:"uri"`
	Source       string    `json:"source"`
	DiscoveredAt time.Time `json:"discovered_at"`
}
