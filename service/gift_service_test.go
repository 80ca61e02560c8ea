package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"giftbot/events"
	"giftbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testGiftCost = int64(15)

func newGiftFixture(adminIDs []int64) (*MockParticipantRepository, *MockGiftSender, *MockAdminNotifier, *MockEventPublisher, GiftService) {
	mockRepo := new(MockParticipantRepository)
	mockSender := new(MockGiftSender)
	mockNotifier := new(MockAdminNotifier)
	mockPublisher := new(MockEventPublisher)

	guard := NewBalanceGuard(mockNotifier, adminIDs, testGiftCost)
	service := NewGiftService(mockRepo, mockSender, guard, mockPublisher, testGiftCost)
	return mockRepo, mockSender, mockNotifier, mockPublisher, service
}

func TestGiftService_Issue_Sent(t *testing.T) {
	ctx := context.Background()
	mockRepo, mockSender, mockNotifier, mockPublisher, service := newGiftFixture([]int64{999})

	mockRepo.On("GetByTelegramID", ctx, int64(123456)).Return(&models.Participant{
		TelegramID:  123456,
		RewardState: models.RewardStateNone,
	}, nil)
	mockSender.On("StarBalance", ctx).Return(int64(100), nil)
	mockSender.On("SendGift", ctx, int64(123456)).Return(nil)
	mockRepo.On("MarkReceived", ctx, int64(123456)).Return(true, nil)
	mockPublisher.On("Emit", ctx, mock.MatchedBy(func(e events.Event) bool {
		sent, ok := e.(events.GiftSentEvent)
		return ok && sent.TelegramID == 123456
	})).Return()

	result, err := service.Issue(ctx, 123456)

	assert.NoError(t, err)
	assert.Equal(t, models.IssueSent, result)

	mockRepo.AssertExpectations(t)
	mockSender.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
	mockNotifier.AssertNotCalled(t, "Notify")
	mockRepo.AssertNotCalled(t, "SetPending")
}

func TestGiftService_Issue_InsufficientBalancePreflight(t *testing.T) {
	// Balance 0, gift cost 15: the participant goes pending and every admin
	// is notified exactly once
	ctx := context.Background()
	mockRepo, mockSender, mockNotifier, mockPublisher, service := newGiftFixture([]int64{111, 222})

	mockRepo.On("GetByTelegramID", ctx, int64(123456)).Return(&models.Participant{
		TelegramID:  123456,
		RewardState: models.RewardStateNone,
	}, nil)
	mockSender.On("StarBalance", ctx).Return(int64(0), nil)
	mockRepo.On("SetPending", ctx, int64(123456), true).Return(nil)
	mockNotifier.On("Notify", ctx, int64(111), mock.AnythingOfType("string")).Return(nil)
	mockNotifier.On("Notify", ctx, int64(222), mock.AnythingOfType("string")).Return(nil)
	mockPublisher.On("Emit", ctx, mock.MatchedBy(func(e events.Event) bool {
		deferred, ok := e.(events.ParticipantDeferredEvent)
		return ok && deferred.TelegramID == 123456 && deferred.StarBalance == 0
	})).Return()

	result, err := service.Issue(ctx, 123456)

	assert.NoError(t, err)
	assert.Equal(t, models.IssueInsufficientBalance, result)

	mockSender.AssertNotCalled(t, "SendGift")
	mockRepo.AssertNotCalled(t, "MarkReceived")
	mockNotifier.AssertNumberOfCalls(t, "Notify", 2)
	mockRepo.AssertExpectations(t)
}

func TestGiftService_Issue_AlreadyPending_NoDuplicateNotification(t *testing.T) {
	// Re-issuing while already pending keeps the queue position but never
	// notifies admins a second time
	ctx := context.Background()
	mockRepo, mockSender, mockNotifier, mockPublisher, service := newGiftFixture([]int64{999})

	mockRepo.On("GetByTelegramID", ctx, int64(123456)).Return(&models.Participant{
		TelegramID:  123456,
		RewardState: models.RewardStatePending,
	}, nil)
	mockSender.On("StarBalance", ctx).Return(int64(5), nil)
	mockRepo.On("SetPending", ctx, int64(123456), true).Return(nil)

	result, err := service.Issue(ctx, 123456)

	assert.NoError(t, err)
	assert.Equal(t, models.IssueInsufficientBalance, result)

	mockNotifier.AssertNotCalled(t, "Notify")
	mockPublisher.AssertNotCalled(t, "Emit")
}

func TestGiftService_Issue_InsufficientAtSendTime(t *testing.T) {
	// The pre-flight passed but the send itself reported insufficient stars;
	// classified exactly like a pre-flight failure
	ctx := context.Background()
	mockRepo, mockSender, mockNotifier, mockPublisher, service := newGiftFixture([]int64{999})

	mockRepo.On("GetByTelegramID", ctx, int64(123456)).Return(&models.Participant{
		TelegramID:  123456,
		RewardState: models.RewardStateNone,
	}, nil)
	mockSender.On("StarBalance", ctx).Return(int64(20), nil)
	mockSender.On("SendGift", ctx, int64(123456)).Return(ErrInsufficientStars)
	mockRepo.On("SetPending", ctx, int64(123456), true).Return(nil)
	mockNotifier.On("Notify", ctx, int64(999), mock.AnythingOfType("string")).Return(nil)
	mockPublisher.On("Emit", ctx, mock.MatchedBy(func(e events.Event) bool {
		_, ok := e.(events.ParticipantDeferredEvent)
		return ok
	})).Return()

	result, err := service.Issue(ctx, 123456)

	assert.NoError(t, err)
	assert.Equal(t, models.IssueInsufficientBalance, result)

	mockRepo.AssertNotCalled(t, "MarkReceived")
	mockNotifier.AssertNumberOfCalls(t, "Notify", 1)
	mockRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestGiftService_Issue_BalanceCheckFails_SendStillAttempted(t *testing.T) {
	// A failed balance pre-flight never blocks issuance; the send attempt
	// itself classifies the outcome
	ctx := context.Background()
	mockRepo, mockSender, _, mockPublisher, service := newGiftFixture([]int64{999})

	mockRepo.On("GetByTelegramID", ctx, int64(123456)).Return(&models.Participant{
		TelegramID:  123456,
		RewardState: models.RewardStateNone,
	}, nil)
	mockSender.On("StarBalance", ctx).Return(int64(0), errors.New("api unavailable"))
	mockSender.On("SendGift", ctx, int64(123456)).Return(nil)
	mockRepo.On("MarkReceived", ctx, int64(123456)).Return(true, nil)
	mockPublisher.On("Emit", ctx, mock.Anything).Return()

	result, err := service.Issue(ctx, 123456)

	assert.NoError(t, err)
	assert.Equal(t, models.IssueSent, result)
	mockSender.AssertExpectations(t)
}

func TestGiftService_Issue_TransientSendFailure(t *testing.T) {
	ctx := context.Background()
	mockRepo, mockSender, mockNotifier, mockPublisher, service := newGiftFixture([]int64{999})

	mockRepo.On("GetByTelegramID", ctx, int64(123456)).Return(&models.Participant{
		TelegramID:  123456,
		RewardState: models.RewardStateNone,
	}, nil)
	mockSender.On("StarBalance", ctx).Return(int64(100), nil)
	mockSender.On("SendGift", ctx, int64(123456)).Return(errors.New("network timeout"))

	result, err := service.Issue(ctx, 123456)

	assert.NoError(t, err)
	assert.Equal(t, models.IssueFailed, result)

	// State unchanged: the participant can simply check again
	mockRepo.AssertNotCalled(t, "MarkReceived")
	mockRepo.AssertNotCalled(t, "SetPending")
	mockNotifier.AssertNotCalled(t, "Notify")
	mockPublisher.AssertNotCalled(t, "Emit")
}

func TestGiftService_Issue_AlreadyReceived(t *testing.T) {
	ctx := context.Background()
	mockRepo, mockSender, _, mockPublisher, service := newGiftFixture([]int64{999})

	receivedAt := time.Now()
	mockRepo.On("GetByTelegramID", ctx, int64(123456)).Return(&models.Participant{
		TelegramID:  123456,
		RewardState: models.RewardStateReceived,
		ReceivedAt:  &receivedAt,
	}, nil)

	result, err := service.Issue(ctx, 123456)

	assert.NoError(t, err)
	assert.Equal(t, models.IssueSent, result)

	// Success-equivalent: no second send
	mockSender.AssertNotCalled(t, "StarBalance")
	mockSender.AssertNotCalled(t, "SendGift")
	mockPublisher.AssertNotCalled(t, "Emit")
}

func TestGiftService_Issue_MarkReceivedError(t *testing.T) {
	ctx := context.Background()
	mockRepo, mockSender, _, mockPublisher, service := newGiftFixture([]int64{999})

	mockRepo.On("GetByTelegramID", ctx, int64(123456)).Return(&models.Participant{
		TelegramID:  123456,
		RewardState: models.RewardStateNone,
	}, nil)
	mockSender.On("StarBalance", ctx).Return(int64(100), nil)
	mockSender.On("SendGift", ctx, int64(123456)).Return(nil)
	mockRepo.On("MarkReceived", ctx, int64(123456)).Return(false, errors.New("database error"))

	result, err := service.Issue(ctx, 123456)

	assert.Error(t, err)
	assert.Equal(t, models.IssueFailed, result)
	mockPublisher.AssertNotCalled(t, "Emit")
}

func TestGiftService_Issue_ConcurrentWinner(t *testing.T) {
	// The conditional update lost to a concurrent issuance: no error, no
	// double count, still a success for the caller
	ctx := context.Background()
	mockRepo, mockSender, _, mockPublisher, service := newGiftFixture([]int64{999})

	mockRepo.On("GetByTelegramID", ctx, int64(123456)).Return(&models.Participant{
		TelegramID:  123456,
		RewardState: models.RewardStateNone,
	}, nil)
	mockSender.On("StarBalance", ctx).Return(int64(100), nil)
	mockSender.On("SendGift", ctx, int64(123456)).Return(nil)
	mockRepo.On("MarkReceived", ctx, int64(123456)).Return(false, nil)
	mockPublisher.On("Emit", ctx, mock.Anything).Return()

	result, err := service.Issue(ctx, 123456)

	assert.NoError(t, err)
	assert.Equal(t, models.IssueSent, result)
}

func TestGiftService_Issue_ParticipantNotFound(t *testing.T) {
	ctx := context.Background()
	mockRepo, mockSender, _, _, service := newGiftFixture([]int64{999})

	mockRepo.On("GetByTelegramID", ctx, int64(123456)).Return(nil, nil)

	result, err := service.Issue(ctx, 123456)

	assert.ErrorIs(t, err, ErrParticipantNotFound)
	assert.Equal(t, models.IssueFailed, result)
	mockSender.AssertNotCalled(t, "SendGift")
}
