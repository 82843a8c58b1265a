// Package checksum 实现帧尾双字节校验和。
//
// 算法为 Fletcher-16：两个 8 位滚动和，均对 255 取模，初值为 0。
// 第一个校验字节为 sum1，第二个为 sum2。
//
// 注意：该算法属于线路契约的一部分，编码端与解析端必须一致，
// 覆盖范围为起始序列之后的全部头部字节（含 sysID，如果格式携带）与载荷。
package checksum

// Digest 为增量计算的校验和累加器。
//
// 零值可直接使用；解析器在逐字节消费输入时即时折叠，
// 避免为慢速串口链路上的半帧数据做整段重算。
type Digest struct {
	sum1 uint16
	sum2 uint16
}

// Fold 将单个字节折叠进累加器。
func (d *Digest) Fold(b byte) {
	d.sum1 = (d.sum1 + uint16(b)) % 255
	d.sum2 = (d.sum2 + d.sum1) % 255
}

// FoldAll 依次折叠 p 中的所有字节。
func (d *Digest) FoldAll(p []byte) {
	for _, b := range p {
		d.Fold(b)
	}
}

// Sum 返回当前累加结果对应的两个校验字节。
func (d *Digest) Sum() (c1, c2 byte) {
	return byte(d.sum1), byte(d.sum2)
}

// Sum16 返回当前累加结果的 16 位组合形式（c1 为高字节），便于日志输出。
func (d *Digest) Sum16() uint16 {
	return uint16(d.sum1)<<8 | d.sum2
}

// Reset 将累加器恢复为初始状态。
func (d *Digest) Reset() {
	d.sum1 = 0
	d.sum2 = 0
}

// Checksum 一次性计算 p 的校验和。
func Checksum(p []byte) (c1, c2 byte) {
	var d Digest
	d.FoldAll(p)
	return d.Sum()
}
