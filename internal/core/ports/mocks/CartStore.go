package mocks

import (
	"context"

	"github.com/srgjo27/resort_booking/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type CartStore struct {
	mock.Mock
}

func (_m *CartStore) Load(ctx context.Context, sessionID string) (*domain.CartSnapshot, error) {
	ret := _m.Called(ctx, sessionID)

	var r0 *domain.CartSnapshot
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.CartSnapshot)
	}
	return r0, ret.Error(1)
}

func (_m *CartStore) Save(ctx context.Context, sessionID string, snapshot domain.CartSnapshot) error {
	ret := _m.Called(ctx, sessionID, snapshot)
	return ret.Error(0)
}

func (_m *CartStore) Delete(ctx context.Context, sessionID string) error {
	ret := _m.Called(ctx, sessionID)
	return ret.Error(0)
}

func NewCartStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *CartStore {
	m := &CartStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
