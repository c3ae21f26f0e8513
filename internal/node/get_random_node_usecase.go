package node

import (
	"context"

	"github.com/samber/lo"
)

type GetRandomNodeLogger interface {
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
}

type GetRandomNodeUseCase struct {
	reader Reader
	logger GetRandomNodeLogger
}

func NewGetRandomNodeUseCase(reader Reader, logger GetRandomNodeLogger) *GetRandomNodeUseCase {
	return &GetRandomNodeUseCase{
		reader: reader,
		logger: logger,
	}
}

func (uc *GetRandomNodeUseCase) Execute(ctx context.Context, protocol string) (*Node, error) {
	nodes, _, _, err := uc.reader.GetAlive(ctx, 0, 0, FilterOptions{Protocol: protocol})
	if err != nil {
		return nil, err
	}

	if len(nodes) == 0 {
		return nil, ErrNoNodesAvailable
	}

	selected := lo.Sample(nodes)
	uc.logger.Debug("selected random node", "address", selected.Address, "protocol", selected.Protocol)

	return selected, nil
}
