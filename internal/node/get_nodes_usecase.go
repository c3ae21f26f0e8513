package node

import "context"

type GetNodesLogger interface {
	Info(msg string, args ...any)
}

type FilterOptions struct {
	Protocol string
}

type Reader interface {
	GetAlive(ctx context.Context, cursor float64, limit int, filter FilterOptions) ([]*Node, float64, int, error)
}

type GetNodesInput struct {
	Cursor   float64
	Limit    int
	Protocol string
}

type GetNodesOutput struct {
	Nodes      []*Node
	NextCursor float64
	Total      int
}

type GetNodesUseCase struct {
	reader Reader
	logger GetNodesLogger
}

func NewGetNodesUseCase(reader Reader, logger GetNodesLogger) *GetNodesUseCase {
	return &GetNodesUseCase{
		reader: reader,
		logger: logger,
	}
}

func (uc *GetNodesUseCase) Execute(ctx context.Context, input GetNodesInput) (GetNodesOutput, error) {
	nodes, nextCursor, total, err := uc.reader.GetAlive(ctx, input.Cursor, input.Limit, FilterOptions{Protocol: input.Protocol})
	if err != nil {
		return GetNodesOutput{}, err
	}

	uc.logger.Info("fetched nodes", "count", len(nodes), "total", total)

	return GetNodesOutput{
		Nodes:      nodes,
		NextCursor: nextCursor,
		Total:      total,
	}, nil
}
