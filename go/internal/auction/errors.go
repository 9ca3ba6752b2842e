package auction

import "errors"

// ErrBidRejected is wrapped by every bid rejection reason
var ErrBidRejected = errors.New("bid rejected")

var (
	ErrNotLive           = rejection("auction is not accepting bids")
	ErrUnknownTeam       = rejection("unknown team")
	ErrAlreadyLeading    = rejection("team already holds the highest bid")
	ErrInsufficientPurse = rejection("insufficient purse")
)

// ErrHumanTeamNotFound is returned by New when the human team id is not registered
var ErrHumanTeamNotFound = errors.New("human team not found")

// ErrAlreadyStarted is returned when Start is called outside the idle phase
var ErrAlreadyStarted = errors.New("auction already started")

// ErrClosed is returned by operations on a closed engine
var ErrClosed = errors.New("auction closed")

type rejectionError struct {
	msg string
}

func rejection(msg string) error {
	return &rejectionError{msg: msg}
}

func (e *rejectionError) Error() string {
	return e.msg
}

func (e *rejectionError) Unwrap() error {
	return ErrBidRejected
}
