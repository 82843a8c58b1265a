package framing

import (
	"github.com/lk2023060901/protoframe-go/internal/framing/layout"
	"github.com/lk2023060901/protoframe-go/pkg/util/merr"
)

// Options 描述帧层的可配置项（yaml/json），
// 通常由配置文件的 framing 段落反序列化得到。
//
// 示例：
//
//	framing:
//	  format: serial1
//	  max-payload: 255
//	  chunk-size: 512
type Options struct {
	// Format 为帧格式名，取值见 layout.ParseFormat。
	Format string `mapstructure:"format" json:"format"`

	// MaxPayload 为可接受的最大载荷长度，0 表示使用默认上限。
	MaxPayload int `mapstructure:"max-payload" json:"max-payload"`

	// ChunkSize 为接收泵单次读取的字节数上限，0 表示使用默认值。
	ChunkSize int `mapstructure:"chunk-size" json:"chunk-size"`
}

// Layout 解析 Format 字段并校验各项取值。
func (o Options) Layout() (layout.Format, error) {
	format, err := layout.ParseFormat(o.Format)
	if err != nil {
		return layout.FormatUnknown, err
	}
	if o.MaxPayload < 0 || o.MaxPayload > MaxPayloadSize {
		return layout.FormatUnknown, merr.WrapErrParameterInvalidRange(0, MaxPayloadSize, o.MaxPayload, "max-payload")
	}
	if o.ChunkSize < 0 {
		return layout.FormatUnknown, merr.WrapErrParameterInvalid[any](">= 0", o.ChunkSize, "chunk-size")
	}
	return format, nil
}
