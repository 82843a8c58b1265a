// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// protoframeNamespace 是当前项目所有 Prometheus 指标使用的命名空间。
	protoframeNamespace = "protoframe"

	// 以下为当前使用的通用标签名。
	formatLabelName = "format"
	reasonLabelName = "reason"
)

// 解析失败的 reason 标签取值。
const (
	ReasonChecksumMismatch = "checksum_mismatch"
	ReasonOverflow         = "overflow"
	ReasonMalformed        = "malformed"
	ReasonDeserializeFail  = "deserialize_fail"
	ReasonRouteNotFound    = "route_not_found"
)

var (
	// payloadSizeBuckets 为载荷大小的桶划分，单位为字节。
	// 载荷长度字段为单字节，上限 255。
	payloadSizeBuckets = []float64{0, 1, 2, 4, 8, 16, 32, 64, 128, 255}

	FramesEncoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: protoframeNamespace,
			Name:      "frames_encoded_total",
			Help:      "number of frames successfully encoded",
		}, []string{formatLabelName})

	FramesParsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: protoframeNamespace,
			Name:      "frames_parsed_total",
			Help:      "number of frames successfully parsed",
		}, []string{formatLabelName})

	FrameErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: protoframeNamespace,
			Name:      "frame_errors_total",
			Help:      "number of frames dropped during parse or dispatch",
		}, []string{formatLabelName, reasonLabelName})

	ResyncDiscardedBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: protoframeNamespace,
			Name:      "resync_discarded_bytes_total",
			Help:      "bytes discarded while seeking a start sequence",
		}, []string{formatLabelName})

	PayloadSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: protoframeNamespace,
			Name:      "payload_size_bytes",
			Help:      "payload size of parsed frames",
			Buckets:   payloadSizeBuckets,
		}, []string{formatLabelName})

	metricRegisterer prometheus.Registerer
)

// GetRegisterer 返回全局 Prometheus Registerer。
// 如果尚未通过 Register 显式设置，则返回 prometheus.DefaultRegisterer。
func GetRegisterer() prometheus.Registerer {
	if metricRegisterer == nil {
		return prometheus.DefaultRegisterer
	}
	return metricRegisterer
}

// Register 注册当前定义的所有指标。
// 通常应在 init 函数中调用。
func Register(r prometheus.Registerer) {
	r.MustRegister(FramesEncoded)
	r.MustRegister(FramesParsed)
	r.MustRegister(FrameErrors)
	r.MustRegister(ResyncDiscardedBytes)
	r.MustRegister(PayloadSize)
	metricRegisterer = r
}
