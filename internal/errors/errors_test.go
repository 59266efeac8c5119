package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProtocolCarriesStatus(t *testing.T) {
	err := Protocol(http.StatusNotFound)

	assert.Equal(t, CodeProtocolError, err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Equal(t, "backend returned 404: Not Found", err.Error())
}

func TestWrapKeepsCodeAndStatus(t *testing.T) {
	wrapped := Wrapf(Protocol(http.StatusInternalServerError), "dispatch %s", "market")

	assert.Equal(t, CodeProtocolError, GetCode(wrapped))
	assert.Equal(t, http.StatusInternalServerError, GetStatus(wrapped))
	assert.Contains(t, wrapped.Error(), "dispatch market")
}

func TestWrapPlainError(t *testing.T) {
	wrapped := Wrap(fmt.Errorf("boom"), "context")

	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Equal(t, 0, GetStatus(wrapped))
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestGetCodeThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("outer: %w", Timeout(fmt.Errorf("deadline")))

	assert.True(t, IsAppError(err))
	assert.Equal(t, CodeTimeout, GetCode(err))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
}
