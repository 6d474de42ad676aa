package command

import "fmt"

// InvalidParameterError is raised while building a command's option schema
// when a declared parameter name violates Discord's naming rules. It is a
// load-time failure: the extension fails to register, the bot does not start.
type InvalidParameterError struct {
	Command string
	Param   string
	Reason  string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %q on command %q: %s", e.Param, e.Command, e.Reason)
}

// FrontEndError is an anticipated, user-caused failure raised by a handler
// (bad argument, missing permission). The dispatcher renders its message to
// the invoking user and swallows it; it never propagates further.
type FrontEndError struct {
	Message string
}

func (e *FrontEndError) Error() string { return e.Message }

// NewFrontEndError builds a FrontEndError with a formatted user-facing message.
func NewFrontEndError(format string, args ...any) *FrontEndError {
	return &FrontEndError{Message: fmt.Sprintf(format, args...)}
}
