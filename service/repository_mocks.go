package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"giftbot/events"
	"giftbot/models"
)

// MockParticipantRepository is a mock implementation of ParticipantRepository
type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) CreateIfAbsent(ctx context.Context, telegramID int64, username string) (bool, error) {
	args := m.Called(ctx, telegramID, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockParticipantRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.Participant, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participant), args.Error(1)
}

func (m *MockParticipantRepository) SetMembershipVerified(ctx context.Context, telegramID int64, verified bool) error {
	args := m.Called(ctx, telegramID, verified)
	return args.Error(0)
}

func (m *MockParticipantRepository) SetPending(ctx context.Context, telegramID int64, pending bool) error {
	args := m.Called(ctx, telegramID, pending)
	return args.Error(0)
}

func (m *MockParticipantRepository) MarkReceived(ctx context.Context, telegramID int64) (bool, error) {
	args := m.Called(ctx, telegramID)
	return args.Bool(0), args.Error(1)
}

func (m *MockParticipantRepository) GetPending(ctx context.Context) ([]*models.Participant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Participant), args.Error(1)
}

func (m *MockParticipantRepository) GetAll(ctx context.Context) ([]*models.Participant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Participant), args.Error(1)
}

func (m *MockParticipantRepository) CountParticipants(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockParticipantRepository) CountReceived(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockParticipantRepository) CountPending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockParticipantRepository) EnsureAdmin(ctx context.Context, telegramID int64) error {
	args := m.Called(ctx, telegramID)
	return args.Error(0)
}

func (m *MockParticipantRepository) IsAdmin(ctx context.Context, telegramID int64) (bool, error) {
	args := m.Called(ctx, telegramID)
	return args.Bool(0), args.Error(1)
}

// MockMembershipVerifier is a mock implementation of MembershipVerifier
type MockMembershipVerifier struct {
	mock.Mock
}

func (m *MockMembershipVerifier) Check(ctx context.Context, telegramID int64) bool {
	args := m.Called(ctx, telegramID)
	return args.Bool(0)
}

// MockActivationVerifier is a mock implementation of ActivationVerifier
type MockActivationVerifier struct {
	mock.Mock
}

func (m *MockActivationVerifier) Check(ctx context.Context, telegramID int64) bool {
	args := m.Called(ctx, telegramID)
	return args.Bool(0)
}

// MockGiftSender is a mock implementation of GiftSender
type MockGiftSender struct {
	mock.Mock
}

func (m *MockGiftSender) StarBalance(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGiftSender) SendGift(ctx context.Context, telegramID int64) error {
	args := m.Called(ctx, telegramID)
	return args.Error(0)
}

// MockAdminNotifier is a mock implementation of AdminNotifier
type MockAdminNotifier struct {
	mock.Mock
}

func (m *MockAdminNotifier) Notify(ctx context.Context, adminID int64, text string) error {
	args := m.Called(ctx, adminID, text)
	return args.Error(0)
}

// MockGiftService is a mock implementation of GiftService
type MockGiftService struct {
	mock.Mock
}

func (m *MockGiftService) Issue(ctx context.Context, telegramID int64) (models.IssueResult, error) {
	args := m.Called(ctx, telegramID)
	return args.Get(0).(models.IssueResult), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Emit(ctx context.Context, event events.Event) {
	m.Called(ctx, event)
}
