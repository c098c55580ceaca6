package apierror_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jimyag/adshelf/pkg/apierror"
	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		testFunc func(*testing.T)
	}{
		{
			name: "Error_Error",
			testFunc: func(t *testing.T) {
				t.Parallel()
				err := apierror.NewError("TestError", "test message")
				assert.Equal(t, "[TestError] test message", err.Error())
			},
		},
		{
			name: "Error_Error_WithRawError",
			testFunc: func(t *testing.T) {
				t.Parallel()
				err := apierror.NewErrorWithRaw("TestError", "test message", fmt.Errorf("raw error"))
				assert.Equal(t, "[TestError] test message (RawError: raw error)", err.Error())
			},
		},
		{
			name: "Error_Is_SameCode",
			testFunc: func(t *testing.T) {
				t.Parallel()
				err1 := apierror.NewError("TestError", "message 1")
				err2 := apierror.NewError("TestError", "message 2")
				assert.True(t, errors.Is(err1, err2))
			},
		},
		{
			name: "Error_Is_DifferentCode",
			testFunc: func(t *testing.T) {
				t.Parallel()
				err1 := apierror.NewError("TestError", "message")
				err2 := apierror.NewError("DifferentError", "message")
				assert.False(t, errors.Is(err1, err2))
			},
		},
		{
			name: "Error_Is_WrappedPredefined",
			testFunc: func(t *testing.T) {
				t.Parallel()
				err := apierror.NotFound("tag %s not found", "tag-1")
				wrapped := fmt.Errorf("delete tag: %w", err)
				assert.True(t, errors.Is(wrapped, apierror.ErrResourceNotFound))
				assert.Equal(t, http.StatusNotFound, err.Status())
				assert.Equal(t, "tag tag-1 not found", err.Message)
			},
		},
		{
			name: "Error_Unwrap",
			testFunc: func(t *testing.T) {
				t.Parallel()
				rawErr := fmt.Errorf("raw error")
				err := apierror.WrapError(apierror.ErrInternalError, "Failed to list tags", rawErr)
				assert.Equal(t, rawErr, errors.Unwrap(err))
				assert.Nil(t, errors.Unwrap(apierror.NewError("TestError", "test message")))
			},
		},
		{
			name: "Error_Status_Default",
			testFunc: func(t *testing.T) {
				t.Parallel()
				var err *apierror.Error
				assert.Equal(t, http.StatusInternalServerError, err.Status())
				assert.Equal(t, http.StatusBadRequest, apierror.InvalidParameter("name is required").Status())
				assert.Equal(t, http.StatusUnauthorized, apierror.Unauthorized("token expired").Status())
			},
		},
		{
			name: "Error_JSON_Marshal_ExcludesRawError",
			testFunc: func(t *testing.T) {
				t.Parallel()
				err := apierror.NewErrorWithRaw("TestError", "test message", fmt.Errorf("raw error"))
				jsonData, marshalErr := json.Marshal(err)
				assert.NoError(t, marshalErr)
				assert.NotContains(t, string(jsonData), "raw error")
				assert.Contains(t, string(jsonData), `"code":"TestError"`)
				assert.Contains(t, string(jsonData), `"message":"test message"`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestErrorResponse(t *testing.T) {
	t.Parallel()

	t.Run("single error", func(t *testing.T) {
		t.Parallel()
		resp := apierror.NewErrorResponse("request-id", apierror.NewError("TestError", "test message"))
		assert.Equal(t, "RequestID: request-id; [TestError] test message", resp.Error())
	})

	t.Run("add error", func(t *testing.T) {
		t.Parallel()
		resp := apierror.NewErrorResponse("request-id")
		resp.AddError(apierror.NewError("TestError", "test message"))
		assert.Len(t, resp.Errors, 1)
		assert.Equal(t, "TestError", resp.Errors[0].Code)
	})

	t.Run("json marshal", func(t *testing.T) {
		t.Parallel()
		resp := apierror.NewErrorResponse("request-id", apierror.ErrConflict)
		jsonData, err := json.Marshal(resp)
		assert.NoError(t, err)
		assert.Contains(t, string(jsonData), `"requestID":"request-id"`)
		assert.Contains(t, string(jsonData), `"code":"Conflict"`)
	})
}
