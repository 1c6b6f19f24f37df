package service

import "errors"

// 业务哨兵错误，handler层据此映射HTTP状态码
var (
	ErrNotFound          = errors.New("资源不存在")
	ErrConflict          = errors.New("资源已存在")
	ErrValidation        = errors.New("参数校验失败")
	ErrInvalidCredential = errors.New("用户名或密码错误")
	ErrAlreadyPartnered  = errors.New("已绑定伴侣")
	ErrNotPartnered      = errors.New("尚未绑定伴侣")
	ErrInvalidInvite     = errors.New("邀请不存在或已处理")
	ErrDuplicateInvite   = errors.New("邀请已发送，等待对方处理")
	ErrNotWatched        = errors.New("请先将该内容标记为已观看")
	ErrSelfReference     = errors.New("不能对自己执行该操作")
)

// Validationf 带具体说明的校验错误
func Validationf(msg string) error {
	return &validationError{msg: msg}
}

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

// Is 使 errors.Is(err, ErrValidation) 对所有校验错误成立
func (e *validationError) Is(target error) bool { return target == ErrValidation }
