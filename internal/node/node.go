package node

import (
	"crypto/sha1"
	"encoding/hex"
	"time"

	"github.com/JulianoL13/app-node-engine/internal/subscription"
)

// Node is a validated node URI as stored and served.
type Node struct {
	URI         string                `json:"uri"`
	Protocol    subscription.Protocol `json:"protocol"`
	Address     string                `json:"address"`
	Name        string                `json:"name"`
	Source      string                `json:"source"`
	FirstSeenAt time.Time             `json:"first_seen_at"`
	LastSeenAt  time.Time             `json:"last_seen_at"`
}

func NewNode(uri string, protocol subscription.Protocol, address, name, source string) *Node {
	now := time.Now()
	return &Node{
		URI:         uri,
		Protocol:    protocol,
		Address:     address,
		Name:        name,
		Source:      source,
		FirstSeenAt: now,
		LastSeenAt:  now,
	}
}

// ID is derived from the URI alone so the same node seen from several
// sources maps to one record.
func (n *Node) ID() string {
	sum := sha1.Sum([]byte(n.URI))
	return hex.EncodeToString(sum[:])
}

func (n *Node) Touch(at time.Time) {
	if n.FirstSeenAt.IsZero() || at.Before(n.FirstSeenAt) {
		n.FirstSeenAt = at
	}
	n.LastSeenAt = at
}
