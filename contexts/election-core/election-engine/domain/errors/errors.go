package errors

import "errors"

var (
	ErrInvalidInput             = errors.New("invalid election input")
	ErrNotAdmin                 = errors.New("caller is not the administrator")
	ErrPhaseViolation           = errors.New("operation not allowed in current cycle phase")
	ErrAlreadyCandidate         = errors.New("account already declared candidacy this cycle")
	ErrAlreadyVoted             = errors.New("account already voted this cycle")
	ErrNotACandidate            = errors.New("account is not an active candidate")
	ErrBelowThreshold           = errors.New("vote threshold or pledge floor not met")
	ErrNotVotedForThisCandidate = errors.New("caller did not vote for this candidate")
	ErrSelfDelegation           = errors.New("candidate cannot delegate to themselves")
	ErrNoCandidates             = errors.New("no electable candidates on the roster")
	ErrNotWinner                = errors.New("caller is not the elected winner")
	ErrNoWinner                 = errors.New("no winner has been elected")
	ErrNothingToClaim           = errors.New("nothing left to claim")
	ErrTransferFailed           = errors.New("value transfer failed")
	ErrCandidateNotFound        = errors.New("candidate profile not found")
)
