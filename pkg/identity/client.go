package identity

import (
	"fmt"
	"sync"
	"time"

	"msp/pkg/config"
	apperrors "msp/pkg/errors"

	"github.com/go-resty/resty/v2"
)

// Client 外部身份服务客户端
//
// 注册和口令校验委托给身份服务，本系统只保留用户的业务档案。
// 身份服务签发的令牌使用共享密钥，可由pkg/jwt本地验证。
type Client struct {
	baseURL string
	http    *resty.Client
}

// NewClient 创建身份服务客户端
func NewClient(cfg *config.IdentityConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: cfg.ResolveIdentityURL(),
		http: resty.New().
			SetTimeout(timeout).
			SetRetryCount(2).
			SetRetryWaitTime(500 * time.Millisecond),
	}
}

// providerResponse 身份服务统一返回格式
type providerResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		SubjectID string `json:"subject_id"`
	} `json:"data"`
}

// Register 在身份服务注册凭证，返回身份主体ID
func (c *Client) Register(email, password string) (string, error) {
	var result providerResponse
	resp, err := c.http.R().
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&result).
		Post(c.baseURL + "/v1/credentials")
	if err != nil {
		return "", apperrors.NewUpstream("身份服务暂时不可用，请稍后重试")
	}

	if !result.Success {
		if resp.StatusCode() == 409 {
			return "", apperrors.NewConflict("该邮箱已注册")
		}
		return "", apperrors.NewUpstream("身份服务注册失败")
	}

	return result.Data.SubjectID, nil
}

// VerifyCredentials 校验邮箱口令，失败时返回权限错误
func (c *Client) VerifyCredentials(email, password string) error {
	var result providerResponse
	resp, err := c.http.R().
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&result).
		Post(c.baseURL + "/v1/credentials/verify")
	if err != nil {
		return apperrors.NewUpstream("身份服务暂时不可用，请稍后重试")
	}

	if !result.Success {
		if resp.StatusCode() == 401 || resp.StatusCode() == 403 {
			return apperrors.NewPermission("邮箱或密码错误")
		}
		return apperrors.NewUpstream(fmt.Sprintf("身份服务返回异常状态：%d", resp.StatusCode()))
	}

	return nil
}

// RevokeSubject 注销身份主体，404视为已注销。用于注册或开通失败时
// 回收刚登记的凭证；商城注销不调用，主站账号继续有效
func (c *Client) RevokeSubject(subjectID string) error {
	resp, err := c.http.R().Delete(c.baseURL + "/v1/credentials/" + subjectID)
	if err != nil {
		return apperrors.NewUpstream("身份服务暂时不可用，请稍后重试")
	}
	if resp.StatusCode() != 200 && resp.StatusCode() != 404 {
		return apperrors.NewUpstream("身份服务注销失败")
	}
	return nil
}

// 单例实现
var (
	defaultClient *Client
	once          sync.Once
)

// GetClient 获取全局身份服务客户端
func GetClient() *Client {
	once.Do(func() {
		cfg := config.GetConfig()
		defaultClient = NewClient(&cfg.Identity)
	})
	return defaultClient
}
