package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeCode(t *testing.T) {
	tests := []struct {
		name     string
		service  int
		category int
		sequence int
		want     int
	}{
		{"common request", ServiceCommon, CategoryRequest, 0, 1000},
		{"embed auth", ServiceEmbed, CategoryAuth, 0, 302000},
		{"engine timeout", ServiceEngine, CategoryTimeout, 0, 9011000},
		{"dashboard resource", ServiceDashboard, CategoryResource, 0, 204000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MakeCode(tt.service, tt.category, tt.sequence))
		})
	}
}

func TestParseCode(t *testing.T) {
	code := MakeCode(ServiceEmbed, CategoryRateLimit, 7)
	service, category, sequence := ParseCode(code)
	assert.Equal(t, ServiceEmbed, service)
	assert.Equal(t, CategoryRateLimit, category)
	assert.Equal(t, 7, sequence)
}

func TestErrnoWithMessage(t *testing.T) {
	e := ErrInvalidParam.WithMessage("agent_name is required")
	assert.Equal(t, ErrInvalidParam.Code, e.Code)
	assert.Equal(t, "agent_name is required", e.Msg)
	// original is untouched
	assert.Equal(t, "Invalid parameter", ErrInvalidParam.Msg)
}

func TestErrnoWithCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	e := ErrEngineUnavailable.WithCause(cause)

	assert.ErrorIs(t, e, ErrEngineUnavailable)
	assert.Equal(t, cause, errors.Unwrap(e))
	assert.Contains(t, e.Error(), "connection refused")
}

func TestFromError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, FromError(nil))
	})

	t.Run("already errno", func(t *testing.T) {
		e := FromError(ErrInvalidEmbedToken)
		assert.Equal(t, ErrInvalidEmbedToken, e)
	})

	t.Run("plain error wraps as internal", func(t *testing.T) {
		e := FromError(fmt.Errorf("boom"))
		require.NotNil(t, e)
		assert.Equal(t, ErrInternal.Code, e.Code)
		assert.Contains(t, e.Error(), "boom")
	})
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, ErrInvalidEmbedToken.HTTPStatus())
	assert.Equal(t, http.StatusTooManyRequests, ErrEmbedRateLimited.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, ErrEmptyQuery.HTTPStatus())

	// zero HTTP falls back to 500
	e := &Errno{Code: 9999999, Msg: "unset"}
	assert.Equal(t, http.StatusInternalServerError, e.HTTPStatus())
}

func TestIsClientServerError(t *testing.T) {
	assert.True(t, IsClientError(ErrEmptyQuery.Code))
	assert.True(t, IsClientError(ErrEmbedRateLimited.Code))
	assert.False(t, IsClientError(ErrDatabase.Code))
	assert.True(t, IsServerError(ErrDatabase.Code))
	assert.True(t, IsServerError(ErrConfig.Code))
}

func TestLookup(t *testing.T) {
	e, ok := Lookup(ErrAgentNotFound.Code)
	require.True(t, ok)
	assert.Equal(t, "Agent not found", e.Msg)

	_, ok = Lookup(9999998)
	assert.False(t, ok)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	assert.Panics(t, func() {
		Register(&Errno{Code: ErrNotFound.Code, Msg: "dup"})
	})
}
