// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

// Package mpegts TS packet的定位与header解析，以及给测试、造流工具使用的section/PES打包
package mpegts

import "github.com/q191201771/naza/pkg/nazalog"

var Log = nazalog.GetGlobalLogger()

const (
	PacketSize  = 188
	HeaderSize  = 4
	PayloadSize = PacketSize - HeaderSize

	SyncByte     = 0x47
	StuffingByte = 0xFF
)

const (
	PidPat  = 0x0000
	PidCat  = 0x0001
	PidNull = 0x1FFF

	PidMax = 0x1FFF
)

// adaptation_field_control
const (
	AdaptationFieldControlReserved = 0 // ISO/IEC 13818-1 reserved
	AdaptationFieldControlNo       = 1 // payload only
	AdaptationFieldControlOnly     = 2 // adaptation field only, no payload
	AdaptationFieldControlFollowed = 3 // adaptation field followed by payload
)

const (
	// SectionMaxSize private section的上限，PSI section（PAT、PMT等）更小，为1024
	SectionMaxSize = 4096

	// SectionHeaderSize table_id + section_syntax_indicator... + section_length
	SectionHeaderSize = 3
)
