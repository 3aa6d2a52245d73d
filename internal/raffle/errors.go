package raffle

import "errors"

// Kind groups failures by what the caller can do about them.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuthorization
	KindTemporal
	KindState
	KindResource
	KindCollaborator
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindTemporal:
		return "temporal"
	case KindState:
		return "state"
	case KindResource:
		return "resource"
	case KindCollaborator:
		return "collaborator"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Code is a machine-readable error code.
type Code string

// Error is the failure type of every raffle operation.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches by code, so wrapped copies of a sentinel compare equal to it.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

func newError(kind Kind, code Code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap attaches a cause to a copy of the sentinel.
func Wrap(sentinel *Error, cause error) *Error {
	return &Error{
		Kind:    sentinel.Kind,
		Code:    sentinel.Code,
		Message: sentinel.Message,
		Cause:   cause,
	}
}

// KindOf reports the kind of the first *Error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// CodeOf reports the code of the first *Error in the chain.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "UNKNOWN"
}

var (
	// Validation
	ErrInvalidMetadata     = newError(KindValidation, "INVALID_METADATA", "invalid metadata address")
	ErrInvalidCollection   = newError(KindValidation, "INVALID_COLLECTION", "invalid collections")
	ErrMetadataParse       = newError(KindValidation, "METADATA_PARSE_ERROR", "can't parse the asset's creators")
	ErrMaxEntrantsTooLarge = newError(KindValidation, "MAX_ENTRANTS_TOO_LARGE", "the number of max entrants is too large")
	ErrEndTimeTooEarly     = newError(KindValidation, "END_TIME_TOO_EARLY", "end time is too early")
	ErrInvalidDemand       = newError(KindValidation, "INVALID_DEMAND", "ticket demand must be positive")
	ErrArithmeticOverflow  = newError(KindValidation, "ARITHMETIC_OVERFLOW", "ticket cost overflows")
	ErrCapacityExceeded    = newError(KindValidation, "CAPACITY_EXCEEDED", "collection registry is full")
	ErrInvalidAddress      = newError(KindValidation, "INVALID_ADDRESS", "invalid address")

	// Authorization
	ErrUnauthorized = newError(KindAuthorization, "UNAUTHORIZED", "caller is not the authority")
	ErrNotWinner    = newError(KindAuthorization, "NOT_WINNER", "you are not the winner")
	ErrNotCreator   = newError(KindAuthorization, "NOT_CREATOR", "you are not the creator of this raffle")

	// Temporal
	ErrRaffleEnded    = newError(KindTemporal, "RAFFLE_ENDED", "this raffle has ended")
	ErrRaffleNotEnded = newError(KindTemporal, "RAFFLE_NOT_ENDED", "this raffle is not over")

	// State
	ErrInvalidState       = newError(KindState, "INVALID_STATE", "operation is invalid for the raffle state")
	ErrAlreadyClaimed     = newError(KindState, "ALREADY_CLAIMED", "the reward was already claimed")
	ErrNoRewards          = newError(KindState, "NO_REWARDS", "there are no rewards to claim")
	ErrNoEntrants         = newError(KindState, "NO_ENTRANTS", "there are no entrants in this raffle")
	ErrHasEntrants        = newError(KindState, "HAS_ENTRANTS", "this raffle has some entrants")
	ErrAlreadyInitialized = newError(KindState, "ALREADY_INITIALIZED", "registry is already initialized")

	// Resource
	ErrNotEnoughTicketsLeft = newError(KindResource, "NOT_ENOUGH_TICKETS_LEFT", "there aren't enough tickets left")
	ErrNotEnoughFunds       = newError(KindResource, "NOT_ENOUGH_FUNDS", "not enough funds")

	// Collaborator
	ErrTransferFailed = newError(KindCollaborator, "TRANSFER_FAILED", "asset transfer failed")
	ErrMetadataLookup = newError(KindCollaborator, "METADATA_LOOKUP_FAILED", "metadata lookup failed")

	// Not found
	ErrRaffleNotFound = newError(KindNotFound, "RAFFLE_NOT_FOUND", "raffle not found")
	ErrNotInitialized = newError(KindNotFound, "NOT_INITIALIZED", "registry is not initialized")
)
