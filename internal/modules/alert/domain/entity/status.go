package entity

import (
	"errors"
	"fmt"
)

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
)

var (
	ErrUnknownStatus     = errors.New("unknown alert status")
	ErrIllegalTransition = errors.New("illegal alert status transition")
)

// transitions lists, for every status, the statuses it may move to.
// resolved is terminal.
var transitions = map[Status]map[Status]struct{}{
	StatusOpen: {
		StatusInProgress: {},
		StatusResolved:   {},
	},
	StatusInProgress: {
		StatusInProgress: {},
		StatusResolved:   {},
	},
	StatusResolved: {},
}

// ParseStatus only accepts the three known values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := transitions[st]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

func (s Status) CanTransitionTo(next Status) bool {
	_, ok := transitions[s][next]
	return ok
}

func (s Status) CheckTransition(next Status) error {
	if !s.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	if !next.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, next)
	}
	if !s.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s, next)
	}
	return nil
}
