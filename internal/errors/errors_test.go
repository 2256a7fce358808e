package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := Unauthorized("sign in first")
	wrapped := Wrap(base, "listing claims")

	assert.Equal(t, CodeUnauthorized, GetCode(wrapped))
	assert.Equal(t, "listing claims: sign in first", wrapped.Error())
	assert.True(t, stderrors.Is(wrapped, base))
}

func TestWrapPlainError(t *testing.T) {
	wrapped := Wrapf(stderrors.New("disk full"), "writing %s", "token")

	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Equal(t, "writing token: disk full", wrapped.Error())
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestGetCodeUnknown(t *testing.T) {
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("x")))
	assert.False(t, IsAppError(stderrors.New("x")))
	assert.True(t, IsAppError(NotFound("claim")))
	assert.Equal(t, "claim not found", NotFound("claim").Error())
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeInvalidInput, stderrors.New("bad date"))
	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.Equal(t, "bad date", err.Error())
}
