package types

// Response 统一响应信封.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"` // 机器可读错误码，如 NO_FILE、DUPLICATE_KEY
}

// OK 构造成功响应.
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// Fail 构造失败响应.
func Fail(message string) Response {
	return Response{Success: false, Message: message}
}

// FailCode 构造带错误码的失败响应.
func FailCode(code, message string) Response {
	return Response{Success: false, Code: code, Message: message}
}
