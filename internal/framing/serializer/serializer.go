// Package serializer 抽象了帧载荷“对象 <-> 字节”的序列化边界。
//
// 说明：
//   - 帧层只搬运字节，载荷内容如何编码由调用方通过 Serializer 注入；
//   - 默认面向 Protobuf（fileID/msgID 即 schema 标识），
//     同时提供 JSON 实现便于调试与文本协议场景。
package serializer

// Serializer 将载荷对象编码为字节序列，或从字节序列还原。
type Serializer interface {
	// Marshal 将任意对象编码为字节序列。
	Marshal(v any) ([]byte, error)

	// Unmarshal 将字节序列解码到目标对象。
	//
	// v 通常为指针类型，用于接收解码结果。
	Unmarshal(data []byte, v any) error
}
