package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/gyeh/claimready/internal/model"
)

type SnapshotStore struct {
	mock.Mock
}

func (s *SnapshotStore) Save(ctx context.Context, snap model.ClaimSnapshot) (string, error) {
	args := s.Called(snap)
	return args.String(0), args.Error(1)
}

func (s *SnapshotStore) Load(ctx context.Context, referenceID string) (model.ClaimSnapshot, error) {
	args := s.Called(referenceID)
	return args.Get(0).(model.ClaimSnapshot), args.Error(1)
}

func (s *SnapshotStore) List(ctx context.Context, limit int) ([]model.ClaimSnapshot, error) {
	args := s.Called(limit)
	return args.Get(0).([]model.ClaimSnapshot), args.Error(1)
}
