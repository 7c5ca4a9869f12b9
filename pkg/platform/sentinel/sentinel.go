package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and the sync layer return
// these (optionally wrapped) so services can translate them into domain
// errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity absent from the store or local snapshot
// - ErrExpired: invite token past its window
// - ErrAlreadyUsed: invite already redeemed
// - ErrInvalidState: entity in wrong lifecycle state for the operation
// - ErrPreconditionFailed: remote recheck disagreed with the caller's view
// - ErrUnavailable: backing store temporarily unreachable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors.
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrExpired            = errors.New("expired")
	ErrAlreadyUsed        = errors.New("already used")
	ErrInvalidState       = errors.New("invalid state")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrUnavailable        = errors.New("unavailable")
)
