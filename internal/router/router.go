package router

import (
	"github.com/fachebot/study-room-client/internal/logger"
	"github.com/fachebot/study-room-client/internal/wire"
)

// HandlerFunc 处理一种入站消息
type HandlerFunc func(env *wire.Envelope) error

// Router 按 type 字段把入站帧分发给唯一的处理函数
type Router struct {
	handlers map[wire.Type]HandlerFunc
}

func New() *Router {
	return &Router{handlers: make(map[wire.Type]HandlerFunc)}
}

// Handle 注册处理函数，同一类型重复注册时覆盖旧的
func (r *Router) Handle(t wire.Type, fn HandlerFunc) {
	if _, ok := r.handlers[t]; ok {
		logger.Warnf("[Router] 类型 %s 的处理函数被覆盖", t)
	}
	r.handlers[t] = fn
}

// Types 已注册的消息类型
func (r *Router) Types() []wire.Type {
	types := make([]wire.Type, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	return types
}

// Dispatch 解析并分发一帧，返回是否有处理函数被调用；任何错误都只记录日志
func (r *Router) Dispatch(raw []byte) bool {
	env, err := wire.DecodeEnvelope(raw)
	if err != nil {
		logger.Warnf("[Router] 丢弃无效消息: %v", err)
		return false
	}

	fn, ok := r.handlers[env.Type]
	if !ok {
		logger.Debugf("[Router] 忽略未知消息类型: %s", env.Type)
		return false
	}

	logger.Debugf("[Router] 收到消息: %s", raw)
	if err := fn(env); err != nil {
		logger.Warnf("[Router] 处理 %s 消息失败: %v", env.Type, err)
	}
	return true
}
