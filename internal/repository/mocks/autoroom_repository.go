package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/INIRU/Tinklepaw-sub002/internal/domain"
)

// AutoRoomRepository is a mock of repository.AutoRoomRepository.
type AutoRoomRepository struct {
	mock.Mock
}

func (m *AutoRoomRepository) FindByChannelID(ctx context.Context, channelID string) (*domain.AutoRoom, error) {
	args := m.Called(ctx, channelID)
	var room *domain.AutoRoom
	if args.Get(0) != nil {
		room = args.Get(0).(*domain.AutoRoom)
	}
	return room, args.Error(1)
}

func (m *AutoRoomRepository) FindLatestByOwner(ctx context.Context, ownerID string) (*domain.AutoRoom, error) {
	args := m.Called(ctx, ownerID)
	var room *domain.AutoRoom
	if args.Get(0) != nil {
		room = args.Get(0).(*domain.AutoRoom)
	}
	return room, args.Error(1)
}

func (m *AutoRoomRepository) Save(ctx context.Context, room *domain.AutoRoom) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *AutoRoomRepository) Delete(ctx context.Context, channelID string) error {
	args := m.Called(ctx, channelID)
	return args.Error(0)
}

func (m *AutoRoomRepository) FindCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.AutoRoom, error) {
	args := m.Called(ctx, cutoff, limit)
	var rooms []domain.AutoRoom
	if args.Get(0) != nil {
		rooms = args.Get(0).([]domain.AutoRoom)
	}
	return rooms, args.Error(1)
}
