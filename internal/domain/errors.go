package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyPool is returned when a mode/topic filter yields no questions.
	ErrEmptyPool = errors.New("question pool is empty")
	// ErrSessionNotFound is returned when a quiz session does not exist.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionCompleted is returned when mutating an already completed session.
	ErrSessionCompleted = errors.New("quiz session already completed")
	// ErrQuestionNotInSession indicates an answer for a question outside the active set.
	ErrQuestionNotInSession = errors.New("question not part of session")
	// ErrIncompleteSession is returned when completion is attempted before every question is answered.
	ErrIncompleteSession = errors.New("session has unanswered questions")
	// ErrVerificationFailed indicates the payment collaborator rejected or mangled the verification.
	ErrVerificationFailed = errors.New("payment verification failed")
	// ErrEmailTaken is returned when registering with an email that already has an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned on failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError points at the offending input field; it is surfaced
// inline, never fatal.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
