// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package dmx

// Stat DemuxInstance的统计快照
type Stat struct {
	ReadBytes         uint64
	Packets           uint64 // 解析出的TS packet总数
	DispatchedPackets uint64 // 属于活跃channel并分发了的packet
	ResyncCount       uint64
	SkippedBytes      uint64
	ShortReads        uint64
	ContinuityErrors  uint64
	TransportErrors   uint64
	MalformedPackets  uint64
	SectionsDelivered uint64
	SectionsUnmatched uint64
	SectionsDropped   uint64
	MisplacedSections uint64
	PesPackets        uint64
}
