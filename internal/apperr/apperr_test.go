package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsThroughWrapping(t *testing.T) {
	base := errors.New("dial tcp: timeout")
	err := fmt.Errorf("lookup group: %w", External(base))

	e, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, KindExternalService, e.Kind)
	assert.Equal(t, CodeExternalService, e.Code)
	assert.ErrorIs(t, err, base)
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "validation: ERROR_400_INVALID_FIELD (taskId)", Validation("taskId", nil).Error())
	assert.Equal(t, "not_found: TASK_NOT_FOUND", NotFound(CodeTaskNotFound, nil).Error())
	assert.Equal(t, "store: boom", Store(errors.New("boom")).Error())

	var nilErr *Error
	assert.Equal(t, "", nilErr.Error())
}

func TestAsPlainError(t *testing.T) {
	_, ok := As(errors.New("plain"))
	assert.False(t, ok)
}
