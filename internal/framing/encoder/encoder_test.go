package encoder

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/protoframe-go/internal/framing"
	"github.com/lk2023060901/protoframe-go/internal/framing/layout"
	"github.com/lk2023060901/protoframe-go/pkg/util/merr"
)

func TestEncodeSerial1Layout(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, layout.FormatSerial1, Frame{
		FileID:  1,
		MsgID:   0,
		Payload: []byte{0x01},
	})
	require.NoError(t, err)

	// fletcher 校验和覆盖 01 00 01 01 四个字节。
	want := []byte{0xA2, 0x90, 0x01, 0x00, 0x01, 0x01, 0x03, 0x07}
	assert.Equal(t, want, buf.Bytes())
}

func TestEncodeBase2Layout(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}

	var buf bytes.Buffer
	err := Encode(&buf, layout.FormatBase2, Frame{
		SysID:   1,
		FileID:  1,
		MsgID:   2,
		Payload: payload,
	})
	require.NoError(t, err)

	out := buf.Bytes()
	require.Len(t, out, len(payload)+layout.OverheadBase2)
	assert.Equal(t, []byte{0x01, 0x01, 0x02, 0x09}, out[:4])
	assert.Equal(t, payload, out[4:])
}

func TestEncodeEmptyPayload(t *testing.T) {
	for _, format := range []layout.Format{
		layout.FormatBase1, layout.FormatBase2,
		layout.FormatSerial1, layout.FormatSerial2,
	} {
		var buf bytes.Buffer
		err := Encode(&buf, format, Frame{SysID: 3, FileID: 7, MsgID: 9})
		require.NoError(t, err, format.String())
		assert.Equal(t, format.Overhead(), buf.Len(), format.String())
	}
}

func TestEncodeInvalidID(t *testing.T) {
	var buf bytes.Buffer

	err := Encode(&buf, layout.FormatBase1, Frame{FileID: 256, MsgID: 1})
	assert.ErrorIs(t, err, merr.ErrFrameInvalidID)
	assert.Zero(t, buf.Len())

	err = Encode(&buf, layout.FormatBase1, Frame{FileID: 1, MsgID: 1 << 16})
	assert.ErrorIs(t, err, merr.ErrFrameInvalidID)

	err = Encode(&buf, layout.FormatSerial2, Frame{SysID: 300, FileID: 1, MsgID: 1})
	assert.ErrorIs(t, err, merr.ErrFrameInvalidID)

	// 不带发送方标识的格式忽略 SysID。
	err = Encode(&buf, layout.FormatSerial1, Frame{SysID: 300, FileID: 1, MsgID: 1})
	assert.NoError(t, err)
}

func TestEncodeOversizedPayload(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, layout.FormatSerial1, Frame{
		FileID:  1,
		MsgID:   1,
		Payload: make([]byte, framing.MaxPayloadSize+1),
	})
	assert.ErrorIs(t, err, merr.ErrFrameOversizedPayload)
	assert.Zero(t, buf.Len())
}

func TestEncodeUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, layout.FormatUnknown, Frame{FileID: 1, MsgID: 1})
	assert.ErrorIs(t, err, merr.ErrFrameFormatInvalid)
}

func TestEncodeBytesMatchesEncode(t *testing.T) {
	frame := Frame{SysID: 2, FileID: 4, MsgID: 8, Payload: []byte("hello")}

	for _, format := range []layout.Format{
		layout.FormatBase1, layout.FormatBase2,
		layout.FormatSerial1, layout.FormatSerial2,
	} {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, format, frame))

		out, err := EncodeBytes(format, frame)
		require.NoError(t, err)
		assert.Equal(t, buf.Bytes(), out, format.String())
	}
}
