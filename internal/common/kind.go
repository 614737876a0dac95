package common

import "errors"

// Kind classifies an error for presentation at the transport boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindExpired
	KindDependencyFailure
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindExpired:
		return "expired"
	case KindDependencyFailure:
		return "dependency_failure"
	default:
		return "internal"
	}
}

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrorValidation, KindValidation},
	{ErrorAlreadyVerified, KindValidation},
	{ErrorInvalidCode, KindValidation},
	{ErrorAlreadyRegistered, KindConflict},
	{ErrorDuplicateEmail, KindConflict},
	{ErrorNotFound, KindNotFound},
	{ErrorInvalidCredentials, KindUnauthorized},
	{ErrMissingToken, KindUnauthorized},
	{ErrInvalidToken, KindUnauthorized},
	{ErrTokenExpired, KindUnauthorized},
	{ErrAccountNotFound, KindUnauthorized},
	{ErrorEmailNotVerified, KindForbidden},
	{ErrorCodeExpired, KindExpired},
	{ErrorNotificationFailed, KindDependencyFailure},
}

// KindOf reports the Kind of err. Unknown errors are KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}
