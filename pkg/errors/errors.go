package errors

// ========== 错误码常量定义 ==========

// CodeSuccess 成功码
const (
	CodeSuccess = 200
)

// HTTP层错误码 (400-599)
const (
	CodeInvalidParam = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeConflict     = 409
	CodeUpstream     = 502
	CodeServerError  = 500
)

// ========== 业务错误类型 ==========

// Kind 错误分类
type Kind string

const (
	KindValidation Kind = "validation" // 参数缺失或格式错误
	KindConflict   Kind = "conflict"   // 唯一性冲突（子域名/域名/邮箱已占用）
	KindNotFound   Kind = "not_found"  // 资源不存在
	KindPermission Kind = "permission" // 角色或租户不匹配
	KindUpstream   Kind = "upstream"   // 身份服务或数据库不可达
	KindInternal   Kind = "internal"   // 未知错误
)

// AppError 业务错误，携带可直接展示给用户的消息
type AppError struct {
	Kind     Kind
	Message  string
	Messages []string // 多条可纠正的错误（表单逐字段提示）
}

func (e *AppError) Error() string {
	return e.Message
}

// Details 返回全部错误消息，至少包含Message本身
func (e *AppError) Details() []string {
	if len(e.Messages) > 0 {
		return e.Messages
	}
	return []string{e.Message}
}

func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func NewValidation(message string) *AppError {
	return New(KindValidation, message)
}

// NewValidationList 多字段验证错误，message取第一条
func NewValidationList(messages []string) *AppError {
	if len(messages) == 0 {
		return NewValidation("参数错误")
	}
	return &AppError{Kind: KindValidation, Message: messages[0], Messages: messages}
}

func NewConflict(message string) *AppError {
	return New(KindConflict, message)
}

func NewNotFound(message string) *AppError {
	return New(KindNotFound, message)
}

func NewPermission(message string) *AppError {
	return New(KindPermission, message)
}

func NewUpstream(message string) *AppError {
	return New(KindUpstream, message)
}

// HTTPCode 错误分类对应的错误码
func (e *AppError) HTTPCode() int {
	switch e.Kind {
	case KindValidation:
		return CodeInvalidParam
	case KindConflict:
		return CodeConflict
	case KindNotFound:
		return CodeNotFound
	case KindPermission:
		return CodeForbidden
	case KindUpstream:
		return CodeUpstream
	default:
		return CodeServerError
	}
}
