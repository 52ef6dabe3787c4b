package service

import "errors"

// 服务层哨兵错误，handle 层据此映射 HTTP 状态码.
var (
	// ErrInvalidCredentials 登录失败统一返回，不区分用户不存在和密码错误.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateEmail 注册邮箱已存在.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrNotFound 目标记录不存在.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey 同级分类编号冲突.
	ErrDuplicateKey = errors.New("duplicate key in parent scope")
	// ErrParentNotFound 父级分类节点不存在.
	ErrParentNotFound = errors.New("parent node not found")
	// ErrHasChildren 节点尚有子节点，拒绝删除.
	ErrHasChildren = errors.New("node still has children")
	// ErrInvalidToken 令牌无效或已过期.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrInvalidMetadata 文档元数据缺失或非法.
	ErrInvalidMetadata = errors.New("invalid document metadata")
	// ErrStorage 对象存储写入失败.
	ErrStorage = errors.New("object storage error")
)
