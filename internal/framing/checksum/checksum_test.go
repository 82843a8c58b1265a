package checksum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksumDeterministic(t *testing.T) {
	data := []byte{0x01, 0x00, 0x01, 0x01}

	c1a, c2a := Checksum(data)
	c1b, c2b := Checksum(data)
	assert.Equal(t, c1a, c1b)
	assert.Equal(t, c2a, c2b)
}

func TestChecksumOrderSensitive(t *testing.T) {
	c1a, c2a := Checksum([]byte{0x01, 0x02})
	c1b, c2b := Checksum([]byte{0x02, 0x01})

	// sum1 只关心字节总和，顺序敏感性由 sum2 提供。
	assert.Equal(t, c1a, c1b)
	assert.NotEqual(t, c2a, c2b)
}

func TestChecksumIncrementalMatchesOneShot(t *testing.T) {
	data := []byte{0xA2, 0x00, 0xFF, 0x7E, 0x13, 0x37}

	var d Digest
	for _, b := range data {
		d.Fold(b)
	}
	c1, c2 := d.Sum()

	w1, w2 := Checksum(data)
	assert.Equal(t, w1, c1)
	assert.Equal(t, w2, c2)
}

func TestChecksumEmpty(t *testing.T) {
	c1, c2 := Checksum(nil)
	assert.Equal(t, byte(0), c1)
	assert.Equal(t, byte(0), c2)
}

func TestChecksumKnownValues(t *testing.T) {
	// Fletcher-16 的经典样例："abcde" -> sum1=0xF0, sum2=0xC8。
	c1, c2 := Checksum([]byte("abcde"))
	assert.Equal(t, byte(0xF0), c1)
	assert.Equal(t, byte(0xC8), c2)
}

func TestDigestReset(t *testing.T) {
	var d Digest
	d.FoldAll([]byte{1, 2, 3})
	d.Reset()

	c1, c2 := d.Sum()
	assert.Equal(t, byte(0), c1)
	assert.Equal(t, byte(0), c2)
}

func TestSum16(t *testing.T) {
	var d Digest
	d.FoldAll([]byte("abcde"))
	assert.Equal(t, uint16(0xF0C8), d.Sum16())
}
