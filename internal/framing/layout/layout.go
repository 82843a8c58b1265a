// Package layout 描述四种帧格式的固定字节布局。
//
// 布局为纯结构性描述：字段顺序、字段宽度以及哪些字段可选；
// 具体的编解码逻辑分别位于 encoder 与 parser 包。
//
// 四种格式：
//
//	Base-1   ：fileID(1) msgID(1) length(1) payload(N)
//	Base-2   ：sysID(1) fileID(1) msgID(1) length(1) payload(N)
//	Serial-1 ：0xA2 0x90 fileID(1) msgID(1) length(1) payload(N) checksum(2)
//	Serial-2 ：0xA2 0x91 sysID(1) fileID(1) msgID(1) length(1) payload(N) checksum(2)
//
// Base 格式假定传输层已经完成分帧（例如一条 WebSocket 消息即一帧）；
// Serial 格式面向无分帧的连续字节流（例如 UART），依赖起始序列重同步与校验和。
package layout

import (
	"github.com/lk2023060901/protoframe-go/pkg/util/merr"
)

// 起始序列的固定取值，属于线路契约的一部分。
const (
	StartByte0        byte = 0xA2 // 两种 Serial 格式共享的首字节
	StartByte1Serial1 byte = 0x90
	StartByte1Serial2 byte = 0x91
)

// 各格式除载荷外的固定开销，单位字节。
const (
	OverheadBase1   = 3
	OverheadBase2   = 4
	OverheadSerial1 = 7
	OverheadSerial2 = 8
)

// ChecksumSize 为 Serial 格式帧尾校验和的字节数。
const ChecksumSize = 2

// Format 标识一种帧格式变体。
//
// 格式由收发双方在带外约定（编译期或配置期选择），不在线路上自描述。
type Format uint8

const (
	// FormatUnknown 为零值，不对应任何合法布局。
	FormatUnknown Format = iota
	FormatBase1
	FormatBase2
	FormatSerial1
	FormatSerial2
)

var formatName = map[Format]string{
	FormatBase1:   "base1",
	FormatBase2:   "base2",
	FormatSerial1: "serial1",
	FormatSerial2: "serial2",
}

func (f Format) String() string {
	if name, ok := formatName[f]; ok {
		return name
	}
	return "unknown"
}

// Valid 返回该格式是否为四种合法布局之一。
func (f Format) Valid() bool {
	_, ok := formatName[f]
	return ok
}

// HasSystemID 返回该格式是否携带单字节发送方标识。
func (f Format) HasSystemID() bool {
	return f == FormatBase2 || f == FormatSerial2
}

// HasChecksum 返回该格式是否携带帧尾双字节校验和。
func (f Format) HasChecksum() bool {
	return f.Serial()
}

// Serial 返回该格式是否面向无分帧字节流（携带起始序列与校验和）。
func (f Format) Serial() bool {
	return f == FormatSerial1 || f == FormatSerial2
}

// Overhead 返回该格式除载荷外的固定字节数。
// 对非法格式返回 0。
func (f Format) Overhead() int {
	switch f {
	case FormatBase1:
		return OverheadBase1
	case FormatBase2:
		return OverheadBase2
	case FormatSerial1:
		return OverheadSerial1
	case FormatSerial2:
		return OverheadSerial2
	default:
		return 0
	}
}

// StartBytes 返回该格式的两字节起始序列。
// 仅 Serial 格式拥有起始序列，Base 格式返回 ok=false。
func (f Format) StartBytes() (b0, b1 byte, ok bool) {
	switch f {
	case FormatSerial1:
		return StartByte0, StartByte1Serial1, true
	case FormatSerial2:
		return StartByte0, StartByte1Serial2, true
	default:
		return 0, 0, false
	}
}

// ParseFormat 将配置中的格式名解析为 Format。
func ParseFormat(name string) (Format, error) {
	for f, n := range formatName {
		if n == name {
			return f, nil
		}
	}
	return FormatUnknown, merr.WrapErrFrameFormatInvalid(name)
}
