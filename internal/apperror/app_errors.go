package apperror

import "errors"

// Error kinds. Every concrete application error unwraps to exactly one of them.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrOutOfTurn    = errors.New("out of turn")
	ErrNoOpMove     = errors.New("no-op move")
	ErrConflict     = errors.New("conflict")
)

var (
	ErrEmailRequired    = New(ErrInvalidInput, "enter an email")
	ErrInvalidEmail     = New(ErrInvalidInput, "enter a valid email")
	ErrSelfPlay         = New(ErrInvalidInput, "cannot play against self")
	ErrInvalidBoard     = New(ErrInvalidInput, "board must have exactly 9 cells")
	ErrIllegalMove      = New(ErrInvalidInput, "mark exactly one empty cell with your own id")
	ErrInvalidPlayer    = New(ErrInvalidInput, "player must have an email")
	ErrUserNotFound     = New(ErrNotFound, "user doesn't exist")
	ErrGameNotFound     = New(ErrNotFound, "game not found")
	ErrCallerNotFound   = New(ErrUnauthorized, "user not found")
	ErrInvalidToken     = New(ErrUnauthorized, "invalid or expired token")
	ErrNotYourTurn      = New(ErrOutOfTurn, "wait for next player to move")
	ErrMakeYourMove     = New(ErrNoOpMove, "make your move")
	ErrActiveGameExists = New(ErrConflict, "please complete the previous game to start a new one")
	ErrGameFinished     = New(ErrConflict, "game is already finished")
	ErrConcurrentUpdate = New(ErrConflict, "game was updated concurrently, reload and retry")
	ErrEmailTaken       = New(ErrConflict, "email is already registered")
)

// Error is a user-correctable failure with a message safe to relay to the caller.
type Error struct {
	Kind    error
	Message string
}

func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (that *Error) Error() string {
	return that.Message
}

func (that *Error) Unwrap() error {
	return that.Kind
}

// Message returns the caller-facing message of the first *Error in the chain.
func Message(err error) (string, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message, true
	}

	return "", false
}
