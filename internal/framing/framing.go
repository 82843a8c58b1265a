// Package framing 定义了帧编解码层共享的基础类型。
//
// 一帧数据携带：可选的发送方标识（sysID）、schema 文件标识（fileID）、
// 消息标识（msgID）、单字节长度以及对应长度的载荷字节。
// 标识的语义由外部 schema 编译器约定，本层只保证其落在单字节范围内。
package framing

// MaxID 为 fileID/msgID/sysID 在线路上的上限，三者各占一个字节。
const MaxID = 0xFF

// MaxPayloadSize 为单帧载荷的上限，长度字段为单字节。
const MaxPayloadSize = 0xFF

// FileID 标识载荷所属的 schema 文件。
// 取值由外部 schema 编译器分配，废弃后不再复用；本层不校验其语义。
type FileID uint32

// MsgID 标识 schema 文件内的消息类型，分配规则与 FileID 相同。
type MsgID uint32

// SystemID 为可选的发送方标识，仅在携带 sysID 的格式变体中出现。
type SystemID uint32

// Valid 判断 FileID 是否可容纳于单字节。
func (id FileID) Valid() bool { return id <= MaxID }

// Valid 判断 MsgID 是否可容纳于单字节。
func (id MsgID) Valid() bool { return id <= MaxID }

// Valid 判断 SystemID 是否可容纳于单字节。
func (id SystemID) Valid() bool { return id <= MaxID }

// ParseResult 为一帧解析完成后向上层暴露的结果。
//
// 注意：Payload 是对解析器内部缓冲区的借用视图，
// 仅在下一次向解析器喂入字节之前有效；需要跨帧保留时必须自行拷贝。
type ParseResult struct {
	FileID FileID
	MsgID  MsgID

	// SysID 仅在 HasSysID 为 true 时有效。
	SysID    SystemID
	HasSysID bool

	Payload []byte
}

// OutcomeKind 描述单步解析的结果类别。
type OutcomeKind uint8

const (
	// OutcomeNeedMore 表示当前帧尚未结束，需要继续喂入字节。
	OutcomeNeedMore OutcomeKind = iota

	// OutcomeComplete 表示一帧解析完成，Outcome.Result 可用。
	OutcomeComplete

	// OutcomeChecksumMismatch 表示校验和不匹配，该帧被丢弃，
	// 解析器已自动回到寻找起始序列的状态。
	OutcomeChecksumMismatch

	// OutcomeOverflow 表示声明的载荷长度超出解析器容量，该帧被丢弃，
	// 解析器已自动回到寻找起始序列的状态。
	OutcomeOverflow
)

var outcomeKindName = map[OutcomeKind]string{
	OutcomeNeedMore:         "need_more",
	OutcomeComplete:         "complete",
	OutcomeChecksumMismatch: "checksum_mismatch",
	OutcomeOverflow:         "overflow",
}

func (k OutcomeKind) String() string {
	if name, ok := outcomeKindName[k]; ok {
		return name
	}
	return "unknown"
}

// Outcome 为解析器每消费一个字节返回的状态。
type Outcome struct {
	Kind OutcomeKind

	// Result 仅在 Kind == OutcomeComplete 时有效。
	Result ParseResult

	// Err 仅在 Kind 为失败终态时有效，携带丢弃原因的细节。
	Err error
}

// Terminal 返回该结果是否终结了一次帧解析（成功或失败）。
// 终结之后解析器内部状态等价于刚构造完成，无需外部干预即可继续喂入字节。
func (o Outcome) Terminal() bool {
	return o.Kind != OutcomeNeedMore
}
