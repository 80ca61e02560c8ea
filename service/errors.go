package service

import "errors"

var (
	// ErrInsufficientStars is returned by GiftSender implementations when the
	// star balance cannot cover the gift at send time
	ErrInsufficientStars = errors.New("insufficient star balance")

	// ErrParticipantNotFound is returned when an operation references a
	// participant that was never registered
	ErrParticipantNotFound = errors.New("participant not found")

	// ErrReconcileInProgress is returned when a reconciliation pass is
	// already running
	ErrReconcileInProgress = errors.New("reconciliation already in progress")
)
