package errors

import "errors"

var (
	ErrInvalidVoteInput = errors.New("invalid vote input")
	ErrRequestNotFound  = errors.New("scorewatch request not found")
	ErrRequestResolved  = errors.New("scorewatch request is already resolved")
	ErrAlreadyVoted     = errors.New("voter has already voted on this request")
	ErrDuplicateRequest = errors.New("a request already exists for this score")
	ErrConflict         = errors.New("scorewatch request conflict")
)
