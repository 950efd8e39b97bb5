package mocks

import (
	"context"

	"github.com/srgjo27/resort_booking/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type StatusPublisher struct {
	mock.Mock
}

func (_m *StatusPublisher) PublishStatusCommand(ctx context.Context, cmd domain.StatusCommand) error {
	ret := _m.Called(ctx, cmd)
	return ret.Error(0)
}

func NewStatusPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *StatusPublisher {
	m := &StatusPublisher{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
