// Package dispatch 维护 (fileID, msgID) 到处理函数的注册表，
// 并负责从"已解析的帧"到业务 Handler 的调度流程。
//
// 典型调用链（接收侧）：
//  1. Parser 从字节流还原出 ParseResult；
//  2. 上层调用 Table.Dispatch(ctx, result)；
//  3. Table 根据 (fileID, msgID) 找到 Route：
//     - NewMessage() 创建载荷对象；
//     - 使用 Serializer.Unmarshal(payload, msg) 反序列化；
//     - 调用业务 Handler。
package dispatch

import (
	"context"

	"github.com/samber/lo"

	"github.com/lk2023060901/protoframe-go/internal/framing"
	"github.com/lk2023060901/protoframe-go/internal/framing/serializer"
	"github.com/lk2023060901/protoframe-go/pkg/util/conc"
	"github.com/lk2023060901/protoframe-go/pkg/util/merr"
)

// Handler 是注册表暴露给业务层的通用处理函数签名。
//
// 说明：
//   - result：原始帧的元数据（fileID/msgID/sysID）；其中 Payload 已被
//     反序列化消费，Handler 不应再依赖它；
//   - msg：已经反序列化完成的载荷对象，具体类型由 Register 时的
//     NewMessage 决定。
type Handler func(ctx context.Context, result framing.ParseResult, msg any) error

// Route 描述一条注册规则：消息标识 -> 载荷类型 + 业务 Handler。
type Route struct {
	// NewMessage 用于创建一个空的载荷对象实例。
	//
	// 要求：
	//   - 必须返回指向具体载荷类型的指针（例如：func() any { return &pb.Position{} }）。
	NewMessage func() any

	// Handler 为业务层实现的处理函数。
	Handler Handler
}

// Key 唯一标识一种消息。
type Key struct {
	FileID framing.FileID
	MsgID  framing.MsgID
}

// Option 调整 Table 的行为。
type Option func(*Table)

// WithPool 让 Dispatch 将 Handler 投递到协程池异步执行。
//
// 注意：异步模式下 Dispatch 的返回值只反映"投递是否成功"，
// Handler 自身的错误由 Handler 负责记录。
func WithPool(pool *conc.Pool) Option {
	return func(t *Table) { t.pool = pool }
}

// Table 维护消息标识到路由规则的映射。
//
// 注意：Register 必须在开始 Dispatch 之前完成，
// 注册阶段结束后 Table 内部状态只读，可被多个调度方并发使用。
type Table struct {
	ser    serializer.Serializer
	routes map[Key]Route
	pool   *conc.Pool
}

// New 创建一个基于给定 Serializer 的注册表。
func New(ser serializer.Serializer, opts ...Option) *Table {
	t := &Table{
		ser:    ser,
		routes: make(map[Key]Route),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Register 为 (fileID, msgID) 注册一条路由规则。
//
// 同一消息标识不允许重复注册，重复时返回 ErrRouteDuplicated。
func (t *Table) Register(fileID framing.FileID, msgID framing.MsgID, route Route) error {
	if !fileID.Valid() || !msgID.Valid() {
		return merr.WrapErrRouteInvalid(uint32(fileID), uint32(msgID), "id out of single-byte range")
	}
	if route.NewMessage == nil {
		return merr.WrapErrRouteInvalid(uint32(fileID), uint32(msgID), "NewMessage is nil")
	}
	if route.Handler == nil {
		return merr.WrapErrRouteInvalid(uint32(fileID), uint32(msgID), "Handler is nil")
	}

	key := Key{FileID: fileID, MsgID: msgID}
	if _, exists := t.routes[key]; exists {
		return merr.WrapErrRouteDuplicated(uint32(fileID), uint32(msgID))
	}
	t.routes[key] = route
	return nil
}

// Keys 返回当前已注册的所有消息标识，顺序不保证。
func (t *Table) Keys() []Key {
	return lo.Keys(t.routes)
}

// Dispatch 处理一帧已经解析出的消息。
//
// 行为：
//  1. 根据 (fileID, msgID) 查找 Route，未注册时返回 ErrRouteNotFound；
//  2. 调用 Route.NewMessage() 创建载荷对象；
//  3. 使用注入的 Serializer 将 Payload 反序列化到载荷对象，
//     失败时返回 ErrDeserializeFail；
//  4. 同步调用业务 Handler，或在配置了协程池时异步投递。
//
// 反序列化在本函数内同步完成，因此 result.Payload 的借用语义
// 不会泄漏到异步 Handler 中。
func (t *Table) Dispatch(ctx context.Context, result framing.ParseResult) error {
	key := Key{FileID: result.FileID, MsgID: result.MsgID}
	route, ok := t.routes[key]
	if !ok {
		return merr.WrapErrRouteNotFound(uint32(result.FileID), uint32(result.MsgID))
	}

	msg := route.NewMessage()
	if msg == nil {
		return merr.WrapErrRouteInvalid(uint32(result.FileID), uint32(result.MsgID), "NewMessage returned nil")
	}
	if len(result.Payload) > 0 {
		if err := t.ser.Unmarshal(result.Payload, msg); err != nil {
			return merr.WrapErrDeserializeFail(uint32(result.FileID), uint32(result.MsgID), err)
		}
	}

	// 投递给 Handler 的 result 不再携带借用的缓冲区。
	result.Payload = nil

	if t.pool == nil {
		return route.Handler(ctx, result, msg)
	}
	return t.pool.Submit(func() {
		_ = route.Handler(ctx, result, msg)
	})
}
