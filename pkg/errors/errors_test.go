package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPCode(t *testing.T) {
	tests := []struct {
		kind Kind
		code int
	}{
		{KindValidation, CodeInvalidParam},
		{KindConflict, CodeConflict},
		{KindNotFound, CodeNotFound},
		{KindPermission, CodeForbidden},
		{KindUpstream, CodeUpstream},
		{KindInternal, CodeServerError},
		{Kind("unknown"), CodeServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.code, New(tt.kind, "boom").HTTPCode())
		})
	}
}

func TestDetails(t *testing.T) {
	single := NewConflict("子域名已被占用")
	assert.Equal(t, []string{"子域名已被占用"}, single.Details())

	multi := NewValidationList([]string{"邮箱格式不合法", "密码长度至少8位"})
	assert.Equal(t, "邮箱格式不合法", multi.Message)
	assert.Len(t, multi.Details(), 2)

	empty := NewValidationList(nil)
	assert.Equal(t, KindValidation, empty.Kind)
	assert.NotEmpty(t, empty.Message)
}

func TestErrorsAsThroughWrap(t *testing.T) {
	wrapped := fmt.Errorf("开通失败: %w", NewConflict("邮箱已被注册"))

	var appErr *AppError
	require.True(t, stderrors.As(wrapped, &appErr))
	assert.Equal(t, KindConflict, appErr.Kind)
	assert.Equal(t, CodeConflict, appErr.HTTPCode())
}
