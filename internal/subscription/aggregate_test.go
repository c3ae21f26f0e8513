package subscription_test

import (
	"testing"

	"github.com/JulianoL13/app-node-engine/internal/subscription"
	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	a := "trojan://password@a.example.com:443#a"
	b := "vless://uuid@b.example.com:443?type=tcp#b"
	c := "ss://YWVzLTI1Ni1nY206cA==@c.example.com:8388#c"

	t.Run("unions sources and collapses duplicates", func(t *testing.T) {
		got := subscription.Aggregate([]subscription.SourceResult{
			{Source: "one", Nodes: []string{a, b}},
			{Source: "two", Nodes: []string{b, c, a}},
		}, subscription.DefaultMinLength)

		assert.Equal(t, []string{a, b, c}, got)
	})

	t.Run("filters by minimum length", func(t *testing.T) {
		got := subscription.Aggregate([]subscription.SourceResult{
			{Source: "one", Nodes: []string{a, "ss://tiny"}},
		}, subscription.DefaultMinLength)

		assert.Equal(t, []string{a}, got)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, subscription.Aggregate(nil, subscription.DefaultMinLength))
	})
}
