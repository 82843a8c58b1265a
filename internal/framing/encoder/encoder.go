// Package encoder 负责将载荷按指定格式打包为一帧并写入到调用方提供的 sink。
package encoder

import (
	"io"

	"github.com/lk2023060901/protoframe-go/internal/framing"
	"github.com/lk2023060901/protoframe-go/internal/framing/checksum"
	"github.com/lk2023060901/protoframe-go/internal/framing/layout"
	"github.com/lk2023060901/protoframe-go/internal/pool/bytebuffer"
	"github.com/lk2023060901/protoframe-go/pkg/metrics"
	"github.com/lk2023060901/protoframe-go/pkg/util/merr"
)

// Frame 描述一帧待编码的数据。
//
// 说明：
//   - SysID 仅在目标格式携带发送方标识时生效，其余格式下被忽略；
//   - Payload 可以为空（length=0 的合法帧）。
type Frame struct {
	SysID  framing.SystemID
	FileID framing.FileID
	MsgID  framing.MsgID

	Payload []byte
}

// Encode 将 frame 按 format 编码后写入 w。
//
// 约定：
//   - 先在临时缓冲区中构造完整帧，再一次性写入 w；
//     任何参数校验失败都不会向 w 写出任何字节；
//   - 编码器自身不持有状态，对不同 sink 的并发调用是安全的。
//
// 错误：
//   - 格式非法返回 ErrFrameFormatInvalid；
//   - 任一标识超出单字节范围返回 ErrFrameInvalidID；
//   - 载荷超过单字节长度字段上限返回 ErrFrameOversizedPayload。
func Encode(w io.Writer, format layout.Format, frame Frame) error {
	if err := validate(format, frame); err != nil {
		return err
	}

	// 使用 ByteBuffer 池降低频繁 make 带来的分配与 GC 压力，
	// 同时保证一帧数据只经过一次 w.Write。
	buf := bytebuffer.Get()
	defer bytebuffer.Put(buf)

	appendFrame(buf, format, frame)

	if _, err := buf.WriteTo(w); err != nil {
		return merr.WrapErrIoFailed("encode", err)
	}

	metrics.FramesEncoded.WithLabelValues(format.String()).Inc()
	return nil
}

// EncodeBytes 将 frame 编码为新分配的字节切片。
//
// 适用于包级传输（例如一条 WebSocket 消息承载一帧）的调用路径。
func EncodeBytes(format layout.Format, frame Frame) ([]byte, error) {
	if err := validate(format, frame); err != nil {
		return nil, err
	}

	buf := bytebuffer.Get()
	defer bytebuffer.Put(buf)

	appendFrame(buf, format, frame)

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	metrics.FramesEncoded.WithLabelValues(format.String()).Inc()
	return out, nil
}

func validate(format layout.Format, frame Frame) error {
	if !format.Valid() {
		return merr.WrapErrFrameFormatInvalid(format)
	}
	if !frame.FileID.Valid() {
		return merr.WrapErrFrameInvalidID("fileID", uint32(frame.FileID))
	}
	if !frame.MsgID.Valid() {
		return merr.WrapErrFrameInvalidID("msgID", uint32(frame.MsgID))
	}
	if format.HasSystemID() && !frame.SysID.Valid() {
		return merr.WrapErrFrameInvalidID("sysID", uint32(frame.SysID))
	}
	if len(frame.Payload) > framing.MaxPayloadSize {
		return merr.WrapErrFrameOversizedPayload(len(frame.Payload), framing.MaxPayloadSize)
	}
	return nil
}

// appendFrame 按格式将各字段依次追加到 buf。
// 调用前必须已通过 validate。
func appendFrame(buf *bytebuffer.ByteBuffer, format layout.Format, frame Frame) {
	if b0, b1, ok := format.StartBytes(); ok {
		_ = buf.WriteByte(b0)
		_ = buf.WriteByte(b1)
	}

	// 校验和覆盖起始序列之后的全部字节。
	var digest checksum.Digest

	if format.HasSystemID() {
		writeHeaderByte(buf, &digest, byte(frame.SysID))
	}
	writeHeaderByte(buf, &digest, byte(frame.FileID))
	writeHeaderByte(buf, &digest, byte(frame.MsgID))
	writeHeaderByte(buf, &digest, byte(len(frame.Payload)))

	_, _ = buf.Write(frame.Payload)
	digest.FoldAll(frame.Payload)

	if format.HasChecksum() {
		c1, c2 := digest.Sum()
		_ = buf.WriteByte(c1)
		_ = buf.WriteByte(c2)
	}
}

func writeHeaderByte(buf *bytebuffer.ByteBuffer, digest *checksum.Digest, b byte) {
	_ = buf.WriteByte(b)
	digest.Fold(b)
}
