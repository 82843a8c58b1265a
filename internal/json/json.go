// Package json 基于 bytedance/sonic 封装标准兼容的 JSON 编解码入口。
//
// 项目内所有 JSON 操作统一经过本包，便于后续整体切换实现。
package json

import (
	"io"

	"github.com/bytedance/sonic"
)

var api = sonic.ConfigStd

// Marshal 将任意对象编码为 JSON 字节序列。
func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

// Unmarshal 将 JSON 字节序列解码到目标对象。
func Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}

// NewEncoder 创建一个写入到 w 的 JSON Encoder。
func NewEncoder(w io.Writer) sonic.Encoder {
	return api.NewEncoder(w)
}

// NewDecoder 创建一个从 r 读取的 JSON Decoder。
func NewDecoder(r io.Reader) sonic.Decoder {
	return api.NewDecoder(r)
}
