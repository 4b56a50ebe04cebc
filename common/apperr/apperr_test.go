package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(NotFoundf("request %d not found", 3)))
	assert.Equal(t, CodeValidation, CodeOf(Validationf("missing field: name")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")), "unknown errors collapse to internal")
	assert.Equal(t, CodeInternal, CodeOf(nil))
}

func TestCodeSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("failed to load request: %w", NotFoundf("request 3 not found"))
	assert.Equal(t, CodeNotFound, CodeOf(err))
	assert.True(t, Is(err, CodeNotFound))
	assert.Equal(t, "request 3 not found", MessageOf(err))
}

func TestInternalKeepsCauseOffTheWire(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := Internal("load request", cause)

	assert.Equal(t, "load request", MessageOf(err), "wire message must not leak the cause")
	assert.ErrorIs(t, err, cause, "logs still see the cause via unwrap")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestMessageOfPlainError(t *testing.T) {
	assert.Equal(t, "internal error", MessageOf(errors.New("secret detail")))
}
