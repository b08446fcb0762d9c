package httpapi

// Result 统一响应包装（仅 /api/v1；/api/* 保持旧的裸 JSON 结构）
// - code: 2000 成功
// - type: 'success' | 'error' | 'warning'
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	ResultSuccess = 2000
	ResultError   = -1
	// ResultAlreadyDonated 与 HTTP 409 一起返回
	ResultAlreadyDonated = 40901
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: result}
}

func Fail(message string) Result[any] {
	return FailCode(ResultError, message)
}

func FailCode(code int, message string) Result[any] {
	return Result[any]{Code: code, Type: "error", Message: message, Result: nil}
}
