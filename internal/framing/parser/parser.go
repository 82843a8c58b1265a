// Package parser 实现串口格式的增量解析状态机。
//
// 设计目标：
//   - 逐字节驱动，适配任意切片大小的字节流输入（串口 / TCP 均可）；
//   - 任何可恢复错误（溢出、校验和不符）之后自动回到寻找起始序列的状态，
//     后续字节流中的合法帧不受影响；
//   - 不做任何 IO，由上层（例如 stream.Reader）负责读取与回调。
package parser

import (
	"github.com/lk2023060901/protoframe-go/internal/framing"
	"github.com/lk2023060901/protoframe-go/internal/framing/checksum"
	"github.com/lk2023060901/protoframe-go/internal/framing/layout"
	"github.com/lk2023060901/protoframe-go/pkg/util/merr"
)

// DefaultMaxPayload 是未显式指定容量时采用的载荷上限。
const DefaultMaxPayload = framing.MaxPayloadSize

type state int

const (
	stateSeekStart0 state = iota
	stateSeekStart1
	stateReadSysID
	stateReadFileID
	stateReadMsgID
	stateReadLength
	stateReadPayload
	stateReadChecksum1
	stateReadChecksum2
)

// Parser 将串口格式的字节流还原为帧。
//
// 注意：
//   - 仅支持带起始序列与校验和的串口格式；
//   - 非并发安全，单个 Parser 只能服务一条字节流。
type Parser struct {
	format layout.Format
	start0 byte
	start1 byte

	capacity int

	state  state
	digest checksum.Digest

	sysID   byte
	fileID  byte
	msgID   byte
	length  int
	payload []byte
	want1   byte

	// discarded 累计寻找起始序列期间丢弃的字节数，跨 Reset 保留。
	discarded uint64
}

// New 创建一个针对 format 的解析器。
//
// capacity 为可接受的最大载荷长度，传 0 时使用 DefaultMaxPayload。
// 声明长度超过 capacity 的帧会以 OutcomeOverflow 结束并被丢弃。
func New(format layout.Format, capacity int) (*Parser, error) {
	if !format.Serial() {
		return nil, merr.WrapErrFrameFormatInvalid(format, "streaming parse requires a serial format")
	}
	if capacity < 0 || capacity > framing.MaxPayloadSize {
		return nil, merr.WrapErrParameterInvalidRange(0, framing.MaxPayloadSize, capacity, "capacity")
	}
	if capacity == 0 {
		capacity = DefaultMaxPayload
	}

	b0, b1, _ := format.StartBytes()
	p := &Parser{
		format:   format,
		start0:   b0,
		start1:   b1,
		capacity: capacity,
		payload:  make([]byte, 0, capacity),
	}
	p.Reset()
	return p, nil
}

// Format 返回解析器绑定的帧格式。
func (p *Parser) Format() layout.Format { return p.format }

// Discarded 返回自创建以来在重新同步过程中丢弃的累计字节数。
// 该计数跨 Reset 保留，供上层做观测上报。
func (p *Parser) Discarded() uint64 { return p.discarded }

// Reset 丢弃所有未完成的解析进度，回到寻找起始序列的状态。
func (p *Parser) Reset() {
	p.state = stateSeekStart0
	p.digest.Reset()
	p.sysID = 0
	p.fileID = 0
	p.msgID = 0
	p.length = 0
	p.payload = p.payload[:0]
	p.want1 = 0
}

// Feed 向状态机投喂一个字节并返回本次推进的结果。
//
// 说明：
//   - 终态结果（完整帧、溢出、校验和不符）返回后状态机已自动复位，
//     可以继续投喂后续字节；
//   - OutcomeComplete 中的 Payload 借用内部缓冲区，
//     下一次 Feed 之前有效。
func (p *Parser) Feed(b byte) framing.Outcome {
	switch p.state {
	case stateSeekStart0:
		if b == p.start0 {
			p.state = stateSeekStart1
		} else {
			p.discarded++
		}
		return needMore()

	case stateSeekStart1:
		switch b {
		case p.start1:
			p.beginHeader()
		case p.start0:
			// 重复出现的第一个起始字节视为新帧的开端，原地等待第二个。
			p.discarded++
		default:
			p.discarded += 2
			p.state = stateSeekStart0
		}
		return needMore()

	case stateReadSysID:
		p.sysID = b
		p.digest.Fold(b)
		p.state = stateReadFileID
		return needMore()

	case stateReadFileID:
		p.fileID = b
		p.digest.Fold(b)
		p.state = stateReadMsgID
		return needMore()

	case stateReadMsgID:
		p.msgID = b
		p.digest.Fold(b)
		p.state = stateReadLength
		return needMore()

	case stateReadLength:
		p.length = int(b)
		if p.length > p.capacity {
			declared := p.length
			p.Reset()
			return framing.Outcome{
				Kind: framing.OutcomeOverflow,
				Err:  merr.WrapErrFrameOverflow(declared, p.capacity),
			}
		}
		p.digest.Fold(b)
		if p.length == 0 {
			p.state = stateReadChecksum1
		} else {
			p.state = stateReadPayload
		}
		return needMore()

	case stateReadPayload:
		p.payload = append(p.payload, b)
		p.digest.Fold(b)
		if len(p.payload) == p.length {
			p.state = stateReadChecksum1
		}
		return needMore()

	case stateReadChecksum1:
		p.want1 = b
		p.state = stateReadChecksum2
		return needMore()

	case stateReadChecksum2:
		return p.finish(b)
	}

	// 不可达。
	p.Reset()
	return needMore()
}

// FeedAll 依次投喂 p 中的所有字节，对每个终态结果调用 on。
//
// on 返回 false 时停止投喂并返回已消费的字节数。
func (p *Parser) FeedAll(data []byte, on func(framing.Outcome) bool) int {
	for i, b := range data {
		outcome := p.Feed(b)
		if !outcome.Terminal() {
			continue
		}
		if !on(outcome) {
			return i + 1
		}
	}
	return len(data)
}

func (p *Parser) beginHeader() {
	p.digest.Reset()
	p.payload = p.payload[:0]
	if p.format.HasSystemID() {
		p.state = stateReadSysID
	} else {
		p.state = stateReadFileID
	}
}

func (p *Parser) finish(c2 byte) framing.Outcome {
	wantC1, wantC2 := p.digest.Sum()
	gotC1, gotC2 := p.want1, c2

	if gotC1 != wantC1 || gotC2 != wantC2 {
		want := uint16(wantC1)<<8 | uint16(wantC2)
		got := uint16(gotC1)<<8 | uint16(gotC2)
		p.Reset()
		return framing.Outcome{
			Kind: framing.OutcomeChecksumMismatch,
			Err:  merr.WrapErrFrameChecksumMismatch(want, got),
		}
	}

	result := framing.ParseResult{
		FileID:   framing.FileID(p.fileID),
		MsgID:    framing.MsgID(p.msgID),
		SysID:    framing.SystemID(p.sysID),
		HasSysID: p.format.HasSystemID(),
		Payload:  p.payload,
	}

	// 复位头部状态但保留 payload 内容供本次结果借用。
	p.state = stateSeekStart0
	p.digest.Reset()
	p.want1 = 0

	return framing.Outcome{Kind: framing.OutcomeComplete, Result: result}
}

func needMore() framing.Outcome {
	return framing.Outcome{Kind: framing.OutcomeNeedMore}
}
