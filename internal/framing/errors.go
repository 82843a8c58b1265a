package framing

// Stage 表示帧收发链路中的处理阶段。
//
// 主要用于在回调与日志中标记错误发生的位置，便于监控与排查。
type Stage string

const (
	StageRecvRaw  Stage = "recv_raw"  // 从字节源读取原始字节
	StageParse    Stage = "parse"     // 原始字节 -> ParseResult
	StageDispatch Stage = "dispatch"  // ParseResult -> 业务处理
	StageEncode   Stage = "encode"    // 业务载荷 -> 帧字节
	StageSend     Stage = "send"      // 底层写出完成
)
