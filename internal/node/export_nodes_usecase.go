package node

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/JulianoL13/app-node-engine/internal/subscription"
	"github.com/samber/lo"
)

type Format string

const (
	FormatPlain  Format = "plain"
	FormatBase64 Format = "base64"
)

type ExportLogger interface {
	Info(msg string, args ...any)
}

type ExportInput struct {
	Format   Format
	Protocol string
	// Clean strips advertising and dates from node names.
	Clean bool
}

// ExportNodesUseCase renders the alive nodes as a subscription body, one
// URI per line, optionally base64 wrapped.
type ExportNodesUseCase struct {
	reader Reader
	logger ExportLogger
}

func NewExportNodesUseCase(reader Reader, logger ExportLogger) *ExportNodesUseCase {
	return &ExportNodesUseCase{
		reader: reader,
		logger: logger,
	}
}

func (uc *ExportNodesUseCase) Execute(ctx context.Context, input ExportInput) (string, error) {
	if input.Format == "" {
		input.Format = FormatPlain
	}
	if input.Format != FormatPlain && input.Format != FormatBase64 {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, input.Format)
	}

	nodes, _, _, err := uc.reader.GetAlive(ctx, 0, 0, FilterOptions{Protocol: input.Protocol})
	if err != nil {
		return "", err
	}

	uris := lo.Map(nodes, func(n *Node, _ int) string {
		if input.Clean {
			return subscription.CleanName(n.URI)
		}
		return n.URI
	})

	var body string
	if len(uris) > 0 {
		body = strings.Join(uris, "\n") + "\n"
	}

	uc.logger.Info("exported nodes", "count", len(uris), "format", input.Format, "clean", input.Clean)

	if input.Format == FormatBase64 {
		return base64.StdEncoding.EncodeToString([]byte(body)), nil
	}
	return body, nil
}
