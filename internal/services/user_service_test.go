package services

import (
	"testing"

	"msp/internal/models"
	apperrors "msp/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyPasswordLocalFallback(t *testing.T) {
	// 没有身份主体ID的账号（种子创建的平台管理员）必须能用本地口令登录
	s := &UserService{}

	user := &models.StartupUser{Email: "admin@marketable.shop"}
	require.NoError(t, user.SetPassword("Admin@123"))

	t.Run("正确口令", func(t *testing.T) {
		assert.NoError(t, s.verifyPassword(user, "Admin@123"))
	})

	t.Run("错误口令", func(t *testing.T) {
		err := s.verifyPassword(user, "wrong-password")
		require.Error(t, err)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.KindPermission, appErr.Kind)
	})
}
