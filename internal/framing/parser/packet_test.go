package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/protoframe-go/internal/framing"
	"github.com/lk2023060901/protoframe-go/internal/framing/encoder"
	"github.com/lk2023060901/protoframe-go/internal/framing/layout"
	"github.com/lk2023060901/protoframe-go/pkg/util/merr"
)

func TestParsePacketBase2(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}
	buf := append([]byte{0x01, 0x01, 0x02, 0x09}, payload...)

	result, err := ParsePacket(layout.FormatBase2, buf)
	require.NoError(t, err)
	assert.Equal(t, framing.SystemID(1), result.SysID)
	assert.True(t, result.HasSysID)
	assert.Equal(t, framing.FileID(1), result.FileID)
	assert.Equal(t, framing.MsgID(2), result.MsgID)
	assert.Equal(t, payload, result.Payload)
}

func TestParsePacketRoundTrip(t *testing.T) {
	for _, format := range []layout.Format{
		layout.FormatBase1, layout.FormatBase2,
		layout.FormatSerial1, layout.FormatSerial2,
	} {
		raw, err := encoder.EncodeBytes(format, encoder.Frame{
			SysID: 4, FileID: 5, MsgID: 6, Payload: []byte("payload"),
		})
		require.NoError(t, err)

		result, err := ParsePacket(format, raw)
		require.NoError(t, err, format.String())
		assert.Equal(t, framing.FileID(5), result.FileID)
		assert.Equal(t, framing.MsgID(6), result.MsgID)
		assert.Equal(t, format.HasSystemID(), result.HasSysID)
		assert.Equal(t, []byte("payload"), result.Payload)
	}
}

func TestParsePacketZeroLength(t *testing.T) {
	result, err := ParsePacket(layout.FormatBase1, []byte{0x07, 0x08, 0x00})
	require.NoError(t, err)
	assert.Equal(t, framing.FileID(7), result.FileID)
	assert.Equal(t, framing.MsgID(8), result.MsgID)
	assert.Empty(t, result.Payload)
}

func TestParsePacketMalformed(t *testing.T) {
	// 短于固定开销。
	_, err := ParsePacket(layout.FormatBase1, []byte{0x01, 0x02})
	assert.ErrorIs(t, err, merr.ErrFrameMalformed)

	// 声明长度与实际不符：声明 5，实际 2。
	_, err = ParsePacket(layout.FormatBase1, []byte{0x01, 0x02, 0x05, 0xAA, 0xBB})
	assert.ErrorIs(t, err, merr.ErrFrameMalformed)

	// 多出的尾部字节同样视为格式错误。
	_, err = ParsePacket(layout.FormatBase1, []byte{0x01, 0x02, 0x01, 0xAA, 0xBB})
	assert.ErrorIs(t, err, merr.ErrFrameMalformed)

	// 起始序列不符。
	_, err = ParsePacket(layout.FormatSerial1, []byte{0xA2, 0x91, 0x01, 0x02, 0x00, 0x00, 0x00})
	assert.ErrorIs(t, err, merr.ErrFrameMalformed)

	// 未知格式。
	_, err = ParsePacket(layout.FormatUnknown, []byte{0x01, 0x02, 0x00})
	assert.ErrorIs(t, err, merr.ErrFrameFormatInvalid)
}

func TestParsePacketChecksumMismatch(t *testing.T) {
	raw, err := encoder.EncodeBytes(layout.FormatSerial2, encoder.Frame{
		SysID: 1, FileID: 2, MsgID: 3, Payload: []byte("abc"),
	})
	require.NoError(t, err)
	raw[len(raw)-2] ^= 0x01

	_, err = ParsePacket(layout.FormatSerial2, raw)
	assert.ErrorIs(t, err, merr.ErrFrameChecksumMismatch)
}
