package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := InvalidInput("project name too long")
	wrapped := Wrap(base, "build failed")

	assert.Equal(t, CodeInvalidInput, GetCode(wrapped))
	assert.Equal(t, "build failed: project name too long", wrapped.Error())
	assert.True(t, stderrors.Is(wrapped, base))
}

func TestWrapPlainError(t *testing.T) {
	wrapped := Wrap(stderrors.New("boom"), "send failed")
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestGetCodeThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("outer: %w", Timeout("slow"))
	assert.True(t, HasCode(err, CodeTimeout))
	assert.True(t, IsAppError(err))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
}

func TestUnauthorizedDefaultMessage(t *testing.T) {
	assert.Equal(t, DefaultUnauthorizedMessage, Unauthorized("").Error())
	assert.Equal(t, "custom", Unauthorized("custom").Error())
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeUnmapped, stderrors.New("odd body"))
	assert.Equal(t, CodeUnmapped, GetCode(err))
	assert.Equal(t, "odd body: odd body", err.Error())
}
