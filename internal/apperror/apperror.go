package apperror

import "errors"

// Kind is a stable error category; handlers map it to an HTTP status.
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
)

// Error carries a Kind, a client-facing message and, for validation failures,
// the name of the offending request field. Msg and Field are sent to clients as is.
type Error struct {
	Kind  Kind
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func New(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func NotFound(msg string, err error) error   { return New(KindNotFound, msg, err) }
func Validation(msg string, err error) error { return New(KindValidation, msg, err) }
func Conflict(msg string, err error) error   { return New(KindConflict, msg, err) }

// InvalidField is a validation error bound to a request field, e.g. "quantity".
func InvalidField(field, msg string, err error) error {
	return &Error{Kind: KindValidation, Field: field, Msg: msg, Err: err}
}

func as(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// KindOf returns the kind of the outermost *Error in the chain, or "" for untyped errors.
func KindOf(err error) Kind {
	if e, ok := as(err); ok {
		return e.Kind
	}
	return ""
}

// FieldOf returns the request field an error refers to, or "".
func FieldOf(err error) string {
	if e, ok := as(err); ok {
		return e.Field
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return kind != "" && KindOf(err) == kind
}

// IsClientError reports whether err was caused by client input rather than a server fault.
func IsClientError(err error) bool {
	switch KindOf(err) {
	case KindValidation, KindNotFound, KindConflict:
		return true
	}
	return false
}
