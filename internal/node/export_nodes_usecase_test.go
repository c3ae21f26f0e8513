package node_test

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/JulianoL13/app-node-engine/internal/common/logs/mocks"
	"github.com/JulianoL13/app-node-engine/internal/node"
	nodemocks "github.com/JulianoL13/app-node-engine/internal/node/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportNodesUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	all := []*node.Node{trojanNode, vlessNode}
	plain := trojanNode.URI + "\n" + vlessNode.URI + "\n"

	t.Run("plain by default", func(t *testing.T) {
		reader := nodemocks.NewReader(t)
		reader.EXPECT().GetAlive(ctx, float64(0), 0, node.FilterOptions{}).Return(all, float64(0), 2, nil)

		body, err := node.NewExportNodesUseCase(reader, mocks.LoggerMock{}).Execute(ctx, node.ExportInput{})

		require.NoError(t, err)
		assert.Equal(t, plain, body)
	})

	t.Run("base64", func(t *testing.T) {
		reader := nodemocks.NewReader(t)
		reader.EXPECT().GetAlive(ctx, float64(0), 0, node.FilterOptions{}).Return(all, float64(0), 2, nil)

		body, err := node.NewExportNodesUseCase(reader, mocks.LoggerMock{}).
			Execute(ctx, node.ExportInput{Format: node.FormatBase64})

		require.NoError(t, err)
		decoded, err := base64.StdEncoding.DecodeString(body)
		require.NoError(t, err)
		assert.Equal(t, plain, string(decoded))
	})

	t.Run("clean names", func(t *testing.T) {
		reader := nodemocks.NewReader(t)
		reader.EXPECT().GetAlive(ctx, float64(0), 0, node.FilterOptions{Protocol: "trojan"}).
			Return([]*node.Node{trojanNode}, float64(0), 1, nil)

		body, err := node.NewExportNodesUseCase(reader, mocks.LoggerMock{}).
			Execute(ctx, node.ExportInput{Protocol: "trojan", Clean: true})

		require.NoError(t, err)
		assert.Equal(t, "trojan://pw@t.example.com:443#HK%2001\n", body)
	})

	t.Run("empty store", func(t *testing.T) {
		reader := nodemocks.NewReader(t)
		reader.EXPECT().GetAlive(ctx, float64(0), 0, node.FilterOptions{}).Return(nil, float64(0), 0, nil)

		body, err := node.NewExportNodesUseCase(reader, mocks.LoggerMock{}).Execute(ctx, node.ExportInput{})

		require.NoError(t, err)
		assert.Empty(t, body)
	})

	t.Run("unknown format", func(t *testing.T) {
		reader := nodemocks.NewReader(t)

		_, err := node.NewExportNodesUseCase(reader, mocks.LoggerMock{}).
			Execute(ctx, node.ExportInput{Format: "clash"})

		assert.ErrorIs(t, err, node.ErrUnknownFormat)
	})
}
