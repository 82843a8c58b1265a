// Package stream 将字节流源、解析状态机与帧回调组装为一个接收泵。
//
// 设计目标：
//   - 上层只关心"来一帧调一次回调"，读取、增量解析、
//     可恢复错误的记录与断流重连全部在本层完成；
//   - 底层流由 Source 工厂提供，串口、TCP、pipe 均可；
//   - 断流后按指数退避重新打开 Source，直到 ctx 取消。
package stream

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/lk2023060901/protoframe-go/internal/framing"
	"github.com/lk2023060901/protoframe-go/internal/framing/layout"
	"github.com/lk2023060901/protoframe-go/internal/framing/parser"
	"github.com/lk2023060901/protoframe-go/pkg/log"
	"github.com/lk2023060901/protoframe-go/pkg/metrics"
	"github.com/lk2023060901/protoframe-go/pkg/util/merr"
)

// Source 负责打开一条底层字节流。
//
// 断流后 Reader 会再次调用 Source 重新建立连接。
type Source func(ctx context.Context) (io.ReadCloser, error)

// Sink 在每解析出一帧后被调用。
//
// result.Payload 借用解析器内部缓冲区，仅在 Sink 返回之前有效。
// dispatch.Table 的 Dispatch 方法可以直接作为 Sink 使用。
type Sink func(ctx context.Context, result framing.ParseResult) error

// Config 描述接收泵的行为。
type Config struct {
	// Format 必须为串口格式。
	Format layout.Format

	// MaxPayload 为可接受的最大载荷长度，0 表示使用解析器默认值。
	MaxPayload int

	// ChunkSize 为单次从底层流读取的字节数上限，0 表示使用 512。
	ChunkSize int

	// ReopenInitialInterval / ReopenMaxInterval 控制断流重连的退避节奏，
	// 为 0 时使用 backoff 库默认值。
	ReopenInitialInterval time.Duration
	ReopenMaxInterval     time.Duration
}

const defaultChunkSize = 512

// Reader 持续从 Source 读取字节并向 Sink 投递解析出的帧。
type Reader struct {
	log.Binder

	cfg    Config
	source Source
	sink   Sink

	parser    *parser.Parser
	discarded uint64
}

// NewReader 创建一个接收泵。
//
// format 非串口格式、source 或 sink 为空时返回错误。
func NewReader(cfg Config, source Source, sink Sink) (*Reader, error) {
	if source == nil {
		return nil, merr.WrapErrParameterMissing("source")
	}
	if sink == nil {
		return nil, merr.WrapErrParameterMissing("sink")
	}

	p, err := parser.New(cfg.Format, cfg.MaxPayload)
	if err != nil {
		return nil, err
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}

	r := &Reader{
		cfg:    cfg,
		source: source,
		sink:   sink,
		parser: p,
	}
	r.SetLogger(log.With(zap.String("component", "stream reader"),
		zap.String("format", cfg.Format.String())))
	return r, nil
}

// Run 阻塞运行接收泵，直到 ctx 取消。
//
// 底层流的 EOF 与读错误不会终止 Run，只会触发按退避节奏的重连；
// 需要并发运行时由调用方自行放入 goroutine。
func (r *Reader) Run(ctx context.Context) error {
	bo := r.newBackOff(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		rc, err := r.source(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			r.Logger().Warn("open stream source failed",
				zap.String("stage", string(framing.StageRecvRaw)), zap.Error(err))
			if !r.wait(ctx, bo) {
				return ctx.Err()
			}
			continue
		}

		bo.Reset()
		err = r.pump(ctx, rc)
		_ = rc.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil && !errors.Is(err, io.EOF) {
			r.Logger().Warn("stream read failed, reopening", zap.Error(err))
		} else {
			r.Logger().Info("stream closed by peer, reopening")
		}

		// 断流视为边界不可信，丢弃未完成的半帧。
		r.parser.Reset()

		if !r.wait(ctx, bo) {
			return ctx.Err()
		}
	}
}

// pump 从 rc 循环读取并驱动解析，直到读失败或 ctx 取消。
func (r *Reader) pump(ctx context.Context, rc io.Reader) error {
	buf := make([]byte, r.cfg.ChunkSize)
	format := r.cfg.Format.String()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := rc.Read(buf)
		if n > 0 {
			r.parser.FeedAll(buf[:n], func(outcome framing.Outcome) bool {
				r.handle(ctx, outcome)
				return ctx.Err() == nil
			})

			if d := r.parser.Discarded(); d > r.discarded {
				metrics.ResyncDiscardedBytes.WithLabelValues(format).Add(float64(d - r.discarded))
				r.discarded = d
			}
		}
		if err != nil {
			if err == io.EOF && n > 0 {
				continue
			}
			return err
		}
	}
}

func (r *Reader) handle(ctx context.Context, outcome framing.Outcome) {
	format := r.cfg.Format.String()

	switch outcome.Kind {
	case framing.OutcomeComplete:
		metrics.FramesParsed.WithLabelValues(format).Inc()
		metrics.PayloadSize.WithLabelValues(format).Observe(float64(len(outcome.Result.Payload)))

		if err := r.sink(ctx, outcome.Result); err != nil {
			metrics.FrameErrors.WithLabelValues(format, sinkReason(err)).Inc()
			r.Logger().Warn("frame sink failed",
				zap.String("stage", string(framing.StageDispatch)),
				zap.Uint32("fileID", uint32(outcome.Result.FileID)),
				zap.Uint32("msgID", uint32(outcome.Result.MsgID)),
				zap.Error(err))
		}

	case framing.OutcomeChecksumMismatch:
		metrics.FrameErrors.WithLabelValues(format, metrics.ReasonChecksumMismatch).Inc()
		r.Logger().Warn("frame dropped",
			zap.String("stage", string(framing.StageParse)), zap.Error(outcome.Err))

	case framing.OutcomeOverflow:
		metrics.FrameErrors.WithLabelValues(format, metrics.ReasonOverflow).Inc()
		r.Logger().Warn("frame dropped",
			zap.String("stage", string(framing.StageParse)), zap.Error(outcome.Err))
	}
}

func (r *Reader) newBackOff(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	if r.cfg.ReopenInitialInterval > 0 {
		bo.InitialInterval = r.cfg.ReopenInitialInterval
	}
	if r.cfg.ReopenMaxInterval > 0 {
		bo.MaxInterval = r.cfg.ReopenMaxInterval
	}
	// 重连永不放弃，退出只由 ctx 驱动。
	bo.MaxElapsedTime = 0
	return backoff.WithContext(bo, ctx)
}

// wait 按退避间隔阻塞，ctx 取消时返回 false。
func (r *Reader) wait(ctx context.Context, bo backoff.BackOff) bool {
	d := bo.NextBackOff()
	if d == backoff.Stop {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func sinkReason(err error) string {
	switch {
	case errors.Is(err, merr.ErrRouteNotFound):
		return metrics.ReasonRouteNotFound
	case errors.Is(err, merr.ErrDeserializeFail):
		return metrics.ReasonDeserializeFail
	default:
		return metrics.ReasonMalformed
	}
}
