package lcu

import (
	"errors"
	"fmt"
)

var ErrProcessNotFound = errors.New("league client process not found")

type ConnectFailure string

const (
	FailureProcessNotFound ConnectFailure = "process not found"
	FailureBadArguments    ConnectFailure = "unreadable process arguments"
	FailureUnreachable     ConnectFailure = "api unreachable"
	FailureUnavailable     ConnectFailure = "client not available"
)

type ConnectError struct {
	Reason ConnectFailure
	Err    error
}

func (e *ConnectError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("could not connect to the League client: %s", e.Reason)
	}

	return fmt.Sprintf("could not connect to the League client: %s: %v", e.Reason, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}
