package core

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrClaimNotFound = fmt.Errorf("%w: claim", ErrNotFound)

	ErrUnauthenticated = errors.New("unauthenticated: sign in first")
	ErrForbiddenRole   = errors.New("this is only available to insurance company accounts")
	ErrInvalidDate     = errors.New("invalid date, expected YYYY-MM-DD")
)
