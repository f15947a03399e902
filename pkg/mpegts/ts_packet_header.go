// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import (
	"github.com/q191201771/naza/pkg/nazabits"
	"github.com/q191201771/tsdmx/pkg/base"
)

// ------------------------------------------------
// <iso13818-1.pdf> <2.4.3.2> <page 36/174>
// sync_byte                    [8b]  * always 0x47
// transport_error_indicator    [1b]
// payload_unit_start_indicator [1b]
// transport_priority           [1b]
// PID                          [13b] **
// transport_scrambling_control [2b]
// adaptation_field_control     [2b]
// continuity_counter           [4b]  *
// ------------------------------------------------
type TsPacketHeader struct {
	Sync             uint8
	Err              uint8
	PayloadUnitStart uint8
	Prio             uint8
	Pid              uint16
	Scra             uint8
	Adaptation       uint8
	Cc               uint8
}

// ----------------------------------------------------------
// <iso13818-1.pdf> <Table 2-6> <page 40/174>
// adaptation_field_length              [8b] * 不包括自己这1字节
// discontinuity_indicator              [1b] *
// random_access_indicator              [1b]
// elementary_stream_priority_indicator [1b]
// ...
// ----------------------------------------------------------
type TsPacketAdaptation struct {
	Length        uint8
	Discontinuity uint8
}

// ParseTsPacketHeader 解析4字节TS Packet header
//
// 只检查长度和sync byte，字段本身的合法性由调用方根据需要判断
func ParseTsPacketHeader(b []byte) (h TsPacketHeader, err error) {
	if len(b) < HeaderSize {
		return h, base.NewErrShortPacket(HeaderSize, len(b))
	}
	if b[0] != SyncByte {
		return h, base.NewErrSyncByte(b[0])
	}

	br := nazabits.NewBitReader(b[:HeaderSize])
	h.Sync, _ = br.ReadBits8(8)
	h.Err, _ = br.ReadBits8(1)
	h.PayloadUnitStart, _ = br.ReadBits8(1)
	h.Prio, _ = br.ReadBits8(1)
	h.Pid, _ = br.ReadBits16(13)
	h.Scra, _ = br.ReadBits8(2)
	h.Adaptation, _ = br.ReadBits8(2)
	h.Cc, _ = br.ReadBits8(4)
	return
}

// ParseTsPacketAdaptation
//
// @param b: 从adaptation_field_length开始
func ParseTsPacketAdaptation(b []byte) (f TsPacketAdaptation, err error) {
	if len(b) < 1 {
		return f, base.NewErrShortPacket(1, len(b))
	}
	f.Length = b[0]
	if f.Length > 0 {
		if len(b) < 2 {
			return f, base.NewErrShortPacket(2, len(b))
		}
		f.Discontinuity = b[1] >> 7
	}
	return
}

// PidOf 不做其他解析，只取出PID
func PidOf(b []byte) (uint16, error) {
	if len(b) < 3 {
		return 0, base.NewErrShortPacket(3, len(b))
	}
	return uint16(b[1]&0x1F)<<8 | uint16(b[2]), nil
}

// TsPacketPayload 跳过header以及adaptation field（如果有的话），返回payload
//
// 没有payload时返回nil。注意，返回值引用`packet`的内存块
func TsPacketPayload(packet []byte, h TsPacketHeader) ([]byte, error) {
	if len(packet) < PacketSize {
		return nil, base.NewErrShortPacket(PacketSize, len(packet))
	}
	if !h.HasPayload() {
		return nil, nil
	}

	index := HeaderSize
	if h.HasAdaptation() {
		afLength := int(packet[HeaderSize])
		index += 1 + afLength
		if index > PacketSize {
			return nil, base.NewErrAdaptationOverflow(afLength)
		}
	}
	return packet[index:PacketSize], nil
}

func (h TsPacketHeader) HasPayload() bool {
	return h.Adaptation&0x1 != 0
}

func (h TsPacketHeader) HasAdaptation() bool {
	return h.Adaptation&0x2 != 0
}

func (h TsPacketHeader) IsScrambled() bool {
	return h.Scra != 0
}

func (h TsPacketHeader) IsNull() bool {
	return h.Pid == PidNull
}

func (h TsPacketHeader) IsPayloadUnitStart() bool {
	return h.PayloadUnitStart == 1
}

// IsDemuxable 是否需要交给解复用处理: 非空包、无传输错误、未加扰、有payload
func (h TsPacketHeader) IsDemuxable() bool {
	return !h.IsNull() && h.Err == 0 && !h.IsScrambled() && h.HasPayload()
}
