package errors

import "fmt"

var (
	ErrWorkerPanic          = fmt.Errorf("worker panic")
	ErrEventPanic           = fmt.Errorf("event handling panic")
	ErrInvalidConfig        = fmt.Errorf("invalid configuration")
	ErrAuthentication       = fmt.Errorf("platform authentication failed")
	ErrMemberNotFound       = fmt.Errorf("member not found")
	ErrDirectMessagesClosed = fmt.Errorf("member does not accept direct messages")
)
