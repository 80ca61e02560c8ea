package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"giftbot/models"

	"github.com/stretchr/testify/assert"
)

func newEligibilityFixture() (*MockParticipantRepository, *MockMembershipVerifier, *MockActivationVerifier, *MockGiftService, *PauseState, EligibilityService) {
	mockRepo := new(MockParticipantRepository)
	mockMembership := new(MockMembershipVerifier)
	mockActivation := new(MockActivationVerifier)
	mockGifts := new(MockGiftService)
	pause := NewPauseState()

	service := NewEligibilityService(mockRepo, mockMembership, mockActivation, mockGifts, pause)
	return mockRepo, mockMembership, mockActivation, mockGifts, pause, service
}

func TestEligibilityService_Evaluate_Paused(t *testing.T) {
	ctx := context.Background()
	mockRepo, mockMembership, mockActivation, mockGifts, pause, service := newEligibilityFixture()

	pause.Pause()

	evaluation, err := service.Evaluate(ctx, 123456)

	assert.NoError(t, err)
	assert.Equal(t, models.OutcomePaused, evaluation.Outcome)

	// Nothing runs while paused, not even the participant load
	mockRepo.AssertNotCalled(t, "GetByTelegramID")
	mockMembership.AssertNotCalled(t, "Check")
	mockActivation.AssertNotCalled(t, "Check")
	mockGifts.AssertNotCalled(t, "Issue")
}

func TestEligibilityService_Evaluate_ParticipantNotFound(t *testing.T) {
	ctx := context.Background()
	mockRepo, _, _, mockGifts, _, service := newEligibilityFixture()

	mockRepo.On("GetByTelegramID", ctx, int64(123456)).Return(nil, nil)

	evaluation, err := service.Evaluate(ctx, 123456)

	assert.ErrorIs(t, err, ErrParticipantNotFound)
	assert.Nil(t, evaluation)
	mockGifts.AssertNotCalled(t, "Issue")
}

func TestEligibilityService_Evaluate_AlreadyReceived(t *testing.T) {
	ctx := context.Background()
	mockRepo, mockMembership, mockActivation, mockGifts, _, service := newEligibilityFixture()

	receivedAt := time.Now()
	mockRepo.On("GetByTelegramID", ctx, int64(123456)).Return(&models.Participant{
		TelegramID:  123456,
		RewardState: models.RewardStateReceived,
		ReceivedAt:  &receivedAt,
	}, nil)

	// Terminal state is stable across repeated evaluations
	for i := 0; i < 3; i++ {
		evaluation, err := service.Evaluate(ctx, 123456)

		assert.NoError(t, err)
		assert.Equal(t, models.OutcomeGiftReceived, evaluation.Outcome)
	}

	// Received short-circuits before any external call
	mockMembership.AssertNotCalled(t, "Check")
	mockActivation.AssertNotCalled(t, "Check")
	mockGifts.AssertNotCalled(t, "Issue")
	mockRepo.AssertNotCalled(t, "SetMembershipVerified")
}

func TestEligibilityService_Evaluate_AlreadyPending(t *testing.T) {
	ctx := context.Background()
	mockRepo, mockMembership, mockActivation, mockGifts, _, service := newEligibilityFixture()

	mockRepo.On("GetByTelegramID", ctx, int64(123456)).Return(&models.Participant{
		TelegramID:  123456,
		RewardState: models.RewardStatePending,
	}, nil)

	evaluation, err := service.Evaluate(ctx, 123456)

	assert.NoError(t, err)
	assert.Equal(t, models.OutcomeGiftPending, evaluation.Outcome)

	// A queued participant never re-enters condition checking, so checking
	// again can never re-trigger the low-balance notification
	mockMembership.AssertNotCalled(t, "Check")
	mockActivation.AssertNotCalled(t, "Check")
	mockGifts.AssertNotCalled(t, "Issue")
}

func TestEligibilityService_Evaluate_MembershipUnmet(t *testing.T) {
	ctx := context.Background()
	mockRepo, mockMembership, mockActivation, mockGifts, _, service := newEligibilityFixture()

	mockRepo.On("GetByTelegramID", ctx, int64(123456)).Return(&models.Participant{
		TelegramID:  123456,
		RewardState: models.RewardStateNone,
	}, nil)
	mockMembership.On("Check", ctx, int64(123456)).Return(false)
	mockActivation.On("Check", ctx, int64(123456)).Return(true)
	mockRepo.On("SetMembershipVerified", ctx, int64(123456), false).Return(nil)

	evaluation, err := service.Evaluate(ctx, 123456)

	assert.NoError(t, err)
	assert.Equal(t, models.OutcomeConditionsUnmet, evaluation.Outcome)
	assert.False(t, evaluation.Conditions.Membership)
	assert.True(t, evaluation.Conditions.ServiceActive)

	mockGifts.AssertNotCalled(t, "Issue")
	mockRepo.AssertExpectations(t)
}

func TestEligibilityService_Evaluate_ActivationUnmet(t *testing.T) {
	ctx := context.Background()
	mockRepo, mockMembership, mockActivation, mockGifts, _, service := newEligibilityFixture()

	mockRepo.On("GetByTelegramID", ctx, int64(123456)).Return(&models.Participant{
		TelegramID:  123456,
		RewardState: models.RewardStateNone,
	}, nil)
	mockMembership.On("Check", ctx, int64(123456)).Return(true)
	mockActivation.On("Check", ctx, int64(123456)).Return(false)
	mockRepo.On("SetMembershipVerified", ctx, int64(123456), true).Return(nil)

	evaluation, err := service.Evaluate(ctx, 123456)

	assert.NoError(t, err)
	assert.Equal(t, models.OutcomeConditionsUnmet, evaluation.Outcome)
	assert.True(t, evaluation.Conditions.Membership)
	assert.False(t, evaluation.Conditions.ServiceActive)

	mockGifts.AssertNotCalled(t, "Issue")
}

func TestEligibilityService_Evaluate_AllMet_GiftSent(t *testing.T) {
	ctx := context.Background()
	mockRepo, mockMembership, mockActivation, mockGifts, _, service := newEligibilityFixture()

	mockRepo.On("GetByTelegramID", ctx, int64(123456)).Return(&models.Participant{
		TelegramID:  123456,
		RewardState: models.RewardStateNone,
	}, nil)
	mockMembership.On("Check", ctx, int64(123456)).Return(true)
	mockActivation.On("Check", ctx, int64(123456)).Return(true)
	mockRepo.On("SetMembershipVerified", ctx, int64(123456), true).Return(nil)
	mockGifts.On("Issue", ctx, int64(123456)).Return(models.IssueSent, nil)

	evaluation, err := service.Evaluate(ctx, 123456)

	assert.NoError(t, err)
	assert.Equal(t, models.OutcomeGiftSent, evaluation.Outcome)

	mockRepo.AssertExpectations(t)
	mockGifts.AssertExpectations(t)
}

func TestEligibilityService_Evaluate_AllMet_InsufficientBalance(t *testing.T) {
	ctx := context.Background()
	mockRepo, mockMembership, mockActivation, mockGifts, _, service := newEligibilityFixture()

	mockRepo.On("GetByTelegramID", ctx, int64(123456)).Return(&models.Participant{
		TelegramID:  123456,
		RewardState: models.RewardStateNone,
	}, nil)
	mockMembership.On("Check", ctx, int64(123456)).Return(true)
	mockActivation.On("Check", ctx, int64(123456)).Return(true)
	mockRepo.On("SetMembershipVerified", ctx, int64(123456), true).Return(nil)
	mockGifts.On("Issue", ctx, int64(123456)).Return(models.IssueInsufficientBalance, nil)

	evaluation, err := service.Evaluate(ctx, 123456)

	assert.NoError(t, err)
	assert.Equal(t, models.OutcomeGiftPending, evaluation.Outcome)
}

func TestEligibilityService_Evaluate_IssueFailed(t *testing.T) {
	ctx := context.Background()
	mockRepo, mockMembership, mockActivation, mockGifts, _, service := newEligibilityFixture()

	mockRepo.On("GetByTelegramID", ctx, int64(123456)).Return(&models.Participant{
		TelegramID:  123456,
		RewardState: models.RewardStateNone,
	}, nil)
	mockMembership.On("Check", ctx, int64(123456)).Return(true)
	mockActivation.On("Check", ctx, int64(123456)).Return(true)
	mockRepo.On("SetMembershipVerified", ctx, int64(123456), true).Return(nil)
	mockGifts.On("Issue", ctx, int64(123456)).Return(models.IssueFailed, nil)

	evaluation, err := service.Evaluate(ctx, 123456)

	assert.NoError(t, err)
	assert.Equal(t, models.OutcomeGiftFailed, evaluation.Outcome)
}

func TestEligibilityService_Evaluate_PersistError(t *testing.T) {
	ctx := context.Background()
	mockRepo, mockMembership, mockActivation, mockGifts, _, service := newEligibilityFixture()

	mockRepo.On("GetByTelegramID", ctx, int64(123456)).Return(&models.Participant{
		TelegramID:  123456,
		RewardState: models.RewardStateNone,
	}, nil)
	mockMembership.On("Check", ctx, int64(123456)).Return(true)
	mockActivation.On("Check", ctx, int64(123456)).Return(true)
	mockRepo.On("SetMembershipVerified", ctx, int64(123456), true).Return(errors.New("database error"))

	evaluation, err := service.Evaluate(ctx, 123456)

	assert.Error(t, err)
	assert.Nil(t, evaluation)
	mockGifts.AssertNotCalled(t, "Issue")
}
