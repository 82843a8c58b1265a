package stream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/protoframe-go/internal/framing"
	"github.com/lk2023060901/protoframe-go/internal/framing/encoder"
	"github.com/lk2023060901/protoframe-go/internal/framing/layout"
	"github.com/lk2023060901/protoframe-go/pkg/log"
	"github.com/lk2023060901/protoframe-go/pkg/util/merr"
)

// bindTestLogger 把 Reader 的日志重定向到 t.Log。
func bindTestLogger(t *testing.T, r *Reader) {
	t.Helper()
	logger, _, err := log.InitTestLogger(t, &log.Config{Level: "debug"})
	require.NoError(t, err)
	r.SetLogger(&log.MLogger{Logger: logger})
}

func encodeFrame(t *testing.T, msgID framing.MsgID, payload []byte) []byte {
	t.Helper()
	raw, err := encoder.EncodeBytes(layout.FormatSerial1, encoder.Frame{
		FileID:  1,
		MsgID:   msgID,
		Payload: payload,
	})
	require.NoError(t, err)
	return raw
}

// errAfterReader 在读完内置数据后返回 readErr。
type errAfterReader struct {
	data *bytes.Reader
	err  error
}

func (r *errAfterReader) Read(p []byte) (int, error) {
	n, err := r.data.Read(p)
	if err == io.EOF {
		return n, r.err
	}
	return n, err
}

func (r *errAfterReader) Close() error { return nil }

func testConfig() Config {
	return Config{
		Format:                layout.FormatSerial1,
		ReopenInitialInterval: time.Millisecond,
		ReopenMaxInterval:     5 * time.Millisecond,
	}
}

func TestNewReaderValidation(t *testing.T) {
	sink := func(context.Context, framing.ParseResult) error { return nil }
	source := func(context.Context) (io.ReadCloser, error) { return nil, io.EOF }

	_, err := NewReader(testConfig(), nil, sink)
	assert.ErrorIs(t, err, merr.ErrParameterMissing)

	_, err = NewReader(testConfig(), source, nil)
	assert.ErrorIs(t, err, merr.ErrParameterMissing)

	cfg := testConfig()
	cfg.Format = layout.FormatBase1
	_, err = NewReader(cfg, source, sink)
	assert.ErrorIs(t, err, merr.ErrFrameFormatInvalid)
}

func TestReaderDeliversFrames(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := append(encodeFrame(t, 1, []byte("one")), encodeFrame(t, 2, []byte("two"))...)

	calls := 0
	source := func(context.Context) (io.ReadCloser, error) {
		calls++
		if calls == 1 {
			return io.NopCloser(bytes.NewReader(stream)), nil
		}
		// 读完即结束测试。
		cancel()
		return nil, ctx.Err()
	}

	var got [][]byte
	sink := func(_ context.Context, result framing.ParseResult) error {
		got = append(got, append([]byte(nil), result.Payload...))
		return nil
	}

	r, err := NewReader(testConfig(), source, sink)
	require.NoError(t, err)

	err = r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, got, 2)
	assert.Equal(t, []byte("one"), got[0])
	assert.Equal(t, []byte("two"), got[1])
}

func TestReaderReopensAfterReadError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	full := encodeFrame(t, 7, []byte("whole"))
	// 第一条流在半帧处中断。
	half := full[:4]

	calls := 0
	source := func(context.Context) (io.ReadCloser, error) {
		calls++
		switch calls {
		case 1:
			return &errAfterReader{
				data: bytes.NewReader(half),
				err:  errors.New("connection reset"),
			}, nil
		case 2:
			return io.NopCloser(bytes.NewReader(full)), nil
		default:
			cancel()
			return nil, ctx.Err()
		}
	}

	var got [][]byte
	sink := func(_ context.Context, result framing.ParseResult) error {
		got = append(got, append([]byte(nil), result.Payload...))
		return nil
	}

	r, err := NewReader(testConfig(), source, sink)
	require.NoError(t, err)
	bindTestLogger(t, r)

	err = r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	// 半帧被丢弃，重连后的完整帧正常投递。
	require.Len(t, got, 1)
	assert.Equal(t, []byte("whole"), got[0])
}

func TestReaderSinkErrorDoesNotStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := append(encodeFrame(t, 1, nil), encodeFrame(t, 2, []byte("kept"))...)

	calls := 0
	source := func(context.Context) (io.ReadCloser, error) {
		calls++
		if calls == 1 {
			return io.NopCloser(bytes.NewReader(stream)), nil
		}
		cancel()
		return nil, ctx.Err()
	}

	var seen []framing.MsgID
	sink := func(_ context.Context, result framing.ParseResult) error {
		seen = append(seen, result.MsgID)
		if result.MsgID == 1 {
			return merr.WrapErrRouteNotFound(uint32(result.FileID), uint32(result.MsgID))
		}
		return nil
	}

	r, err := NewReader(testConfig(), source, sink)
	require.NoError(t, err)
	bindTestLogger(t, r)

	err = r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []framing.MsgID{1, 2}, seen)
}
