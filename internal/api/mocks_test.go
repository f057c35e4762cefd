package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/recite-api/internal/domain"
	"github.com/phrazzld/recite-api/internal/service/recitation"
	"github.com/stretchr/testify/mock"
)

// MockRecitationService mocks recitation.Service
type MockRecitationService struct {
	mock.Mock
}

var _ recitation.Service = (*MockRecitationService)(nil)

func (m *MockRecitationService) StartRecitation(
	ctx context.Context,
	userID, textID uuid.UUID,
	notes string,
) (*domain.RecitationRecord, error) {
	args := m.Called(ctx, userID, textID, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecitationRecord), args.Error(1)
}

func (m *MockRecitationService) CompleteReview(
	ctx context.Context,
	requesterID, reviewID uuid.UUID,
	rating domain.QualityRating,
	notes string,
) (*recitation.CompletedReview, error) {
	args := m.Called(ctx, requesterID, reviewID, rating, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recitation.CompletedReview), args.Error(1)
}

func (m *MockRecitationService) AbandonRecitation(
	ctx context.Context,
	requesterID, recitationID uuid.UUID,
) (*domain.RecitationRecord, error) {
	args := m.Called(ctx, requesterID, recitationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecitationRecord), args.Error(1)
}

func (m *MockRecitationService) ListRecitations(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.RecitationRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RecitationRecord), args.Error(1)
}

func (m *MockRecitationService) ListReviews(
	ctx context.Context,
	requesterID, recitationID uuid.UUID,
) ([]*domain.ReviewRecord, error) {
	args := m.Called(ctx, requesterID, recitationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReviewRecord), args.Error(1)
}

func (m *MockRecitationService) DueReviews(ctx context.Context, userID uuid.UUID) ([]*domain.ReviewRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReviewRecord), args.Error(1)
}
