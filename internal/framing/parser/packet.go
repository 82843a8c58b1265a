package parser

import (
	"github.com/lk2023060901/protoframe-go/internal/framing"
	"github.com/lk2023060901/protoframe-go/internal/framing/checksum"
	"github.com/lk2023060901/protoframe-go/internal/framing/layout"
	"github.com/lk2023060901/protoframe-go/pkg/util/merr"
)

// ParsePacket 对恰好包含一帧的缓冲区做单次解析。
//
// 适用于消息边界由传输层保证的场景（例如一条 WebSocket 消息即一帧）。
// 与流式解析不同，缓冲区长度与声明长度不一致即为格式错误，
// 不存在"继续等待字节"的语义。
//
// 返回结果的 Payload 是对 buf 的切片借用，调用方修改 buf 会影响结果。
func ParsePacket(format layout.Format, buf []byte) (framing.ParseResult, error) {
	var result framing.ParseResult

	if !format.Valid() {
		return result, merr.WrapErrFrameFormatInvalid(format)
	}

	overhead := format.Overhead()
	if len(buf) < overhead {
		return result, merr.WrapErrFrameMalformed(overhead, len(buf), "buffer shorter than frame overhead")
	}

	body := buf
	if b0, b1, ok := format.StartBytes(); ok {
		if buf[0] != b0 || buf[1] != b1 {
			return result, merr.WrapErrFrameMalformed(overhead, len(buf), "start sequence mismatch")
		}
		body = buf[2:]
	}

	idx := 0
	if format.HasSystemID() {
		result.SysID = framing.SystemID(body[idx])
		result.HasSysID = true
		idx++
	}
	result.FileID = framing.FileID(body[idx])
	result.MsgID = framing.MsgID(body[idx+1])
	length := int(body[idx+2])
	idx += 3

	if len(buf) != overhead+length {
		return framing.ParseResult{}, merr.WrapErrFrameMalformed(overhead+length, len(buf))
	}

	result.Payload = body[idx : idx+length]

	if format.HasChecksum() {
		wantC1, wantC2 := checksum.Checksum(body[:idx+length])
		gotC1, gotC2 := body[idx+length], body[idx+length+1]
		if gotC1 != wantC1 || gotC2 != wantC2 {
			want := uint16(wantC1)<<8 | uint16(wantC2)
			got := uint16(gotC1)<<8 | uint16(gotC2)
			return framing.ParseResult{}, merr.WrapErrFrameChecksumMismatch(want, got)
		}
	}

	return result, nil
}
