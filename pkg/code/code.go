// Package code defines the unified error code registry
// Package code 定义统一的错误码注册表
package code

import "fmt"

// Code 带错误码的错误对象
type Code struct {
	// 状态码
	code int
	// 错误消息
	msg string
	// 错误详细信息
	details []string
	// 是否含有详情
	haveDetails bool
}

var codes = map[int]string{}

// NewError registers a new error code; duplicate codes panic at init time
// NewError 注册一个新的错误码，重复注册会在初始化阶段 panic
func NewError(code int, msg string) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("错误码 %d 已经存在，请更换一个", code))
	}
	codes[code] = msg
	return &Code{code: code, msg: msg}
}

// Error 实现 error 接口
func (e *Code) Error() string {
	return e.Msg()
}

func (e *Code) Code() int {
	return e.code
}

func (e *Code) Msg() string {
	return e.msg
}

func (e *Code) Details() []string {
	if !e.haveDetails {
		return nil
	}
	return e.details
}

// Clone 创建一个新的 Code 副本
func (e *Code) Clone() *Code {
	return &Code{
		code: e.code,
		msg:  e.msg,
	}
}

// WithDetails returns a copy carrying extra detail strings
// WithDetails 返回携带详情信息的副本
func (e *Code) WithDetails(details ...string) *Code {
	c := e.Clone()
	c.haveDetails = true
	c.details = append(c.details, details...)
	return c
}

// Is 支持 errors.Is 按错误码比较
func (e *Code) Is(target error) bool {
	t, ok := target.(*Code)
	if !ok {
		return false
	}
	return t.code == e.code
}
