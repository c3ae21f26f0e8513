package mocks

import (
	"context"

	"github.com/JulianoL13/app-node-engine/internal/node"
	"github.com/stretchr/testify/mock"
)

// Reader is a mock of node.Reader.
type Reader struct {
	mock.Mock
}

type Reader_Expecter struct {
	mock *mock.Mock
}

func (_m *Reader) EXPECT() *Reader_Expecter {
	return &Reader_Expecter{mock: &_m.Mock}
}

func (_m *Reader) GetAlive(ctx context.Context, cursor float64, limit int, filter node.FilterOptions) ([]*node.Node, float64, int, error) {
	ret := _m.Called(ctx, cursor, limit, filter)

	var r0 []*node.Node
	if v := ret.Get(0); v != nil {
		r0 = v.([]*node.Node)
	}

	return r0, ret.Get(1).(float64), ret.Int(2), ret.Error(3)
}

type Reader_GetAlive_Call struct {
	*mock.Call
}

func (_e *Reader_Expecter) GetAlive(ctx interface{}, cursor interface{}, limit interface{}, filter interface{}) *Reader_GetAlive_Call {
	return &Reader_GetAlive_Call{Call: _e.mock.On("GetAlive", ctx, cursor, limit, filter)}
}

func (_c *Reader_GetAlive_Call) Return(nodes []*node.Node, nextCursor float64, total int, err error) *Reader_GetAlive_Call {
	_c.Call.Return(nodes, nextCursor, total, err)
	return _c
}

// NewReader creates a Reader whose expectations are asserted on cleanup.
func NewReader(t interface {
	mock.TestingT
	Cleanup(func())
}) *Reader {
	m := &Reader{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
