// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import (
	"github.com/q191201771/naza/pkg/bele"
	"github.com/q191201771/naza/pkg/nazabits"
)

// Section 用于构造PSI/SI section
//
// 解复用本身只关心section的分帧，不解析内容，这里的打包主要给测试以及造流工具使用
//
// ----------------------------------------------------------
// table_id                 [8b]  *
// section_syntax_indicator [1b]
// private_indicator        [1b]
// reserved                 [2b]
// section_length           [12b] **
// -----if section_syntax_indicator == 1-----
// table_id_extension       [16b] **
// reserved                 [2b]
// version_number           [5b]
// current_next_indicator   [1b]  *
// section_number           [8b]  *
// last_section_number      [8b]  *
// ------------------------------------------
// body                     [N bytes]
// CRC_32                   [32b] **** (only if section_syntax_indicator == 1)
// ----------------------------------------------------------
type Section struct {
	TableId           uint8
	SyntaxIndicator   bool
	TableIdExtension  uint16
	Version           uint8
	SectionNumber     uint8
	LastSectionNumber uint8
	Body              []byte
}

// Pack
//
// @return: 完整的section，包括3字节header，以及（如果有的话）CRC_32
func (s *Section) Pack() []byte {
	sectionLength := len(s.Body)
	if s.SyntaxIndicator {
		sectionLength += 5 + 4
	}

	out := make([]byte, SectionHeaderSize+sectionLength)
	bw := nazabits.NewBitWriter(out)
	bw.WriteBits8(8, s.TableId)
	if s.SyntaxIndicator {
		bw.WriteBit(1)
		bw.WriteBit(0)
	} else {
		bw.WriteBit(0)
		bw.WriteBit(1)
	}
	bw.WriteBits8(2, 0xff)
	bw.WriteBits16(12, uint16(sectionLength))

	pos := SectionHeaderSize
	if s.SyntaxIndicator {
		bw.WriteBits16(16, s.TableIdExtension)
		bw.WriteBits8(2, 0xff)
		bw.WriteBits8(5, s.Version)
		bw.WriteBit(1)
		bw.WriteBits8(8, s.SectionNumber)
		bw.WriteBits8(8, s.LastSectionNumber)
		pos += 5
	}
	copy(out[pos:], s.Body)

	if s.SyntaxIndicator {
		crc := CalcCrc32(0xFFFFFFFF, out[:len(out)-4])
		bele.BePutUint32(out[len(out)-4:], crc)
	}
	return out
}

// SectionLength 根据section header计算整个section的长度（包括3字节header）
//
// @param b: 至少3字节
func SectionLength(b []byte) int {
	return SectionHeaderSize + int(bele.BeUint16(b[1:])&0x0FFF)
}

// PacketizeSections 将一个或多个section首尾相连打包成TS packet
//
// 首个packet设置payload_unit_start_indicator并写入值为0的pointer field，最后一个packet剩余空间用0xFF填充。
// 注意，内部会增加`cc`的值
//
// @return: 若干个188字节的TS packet首尾相连
func PacketizeSections(pid uint16, cc *uint8, sections ...[]byte) []byte {
	payload := []byte{0}
	for _, s := range sections {
		payload = append(payload, s...)
	}

	var out []byte
	first := true
	for len(payload) > 0 {
		n := PayloadSize
		if n > len(payload) {
			n = len(payload)
		}
		out = append(out, PackTsPacket(pid, *cc, first, payload[:n])...)
		*cc = (*cc + 1) & 0x0F
		payload = payload[n:]
		first = false
	}
	return out
}

// PackTsPacket 构造一个只有payload（没有adaptation field）的TS packet，payload不足184字节时用0xFF填充
func PackTsPacket(pid uint16, cc uint8, pusi bool, payload []byte) []byte {
	packet := make([]byte, PacketSize)
	packet[0] = SyncByte
	packet[1] = uint8(pid>>8) & 0x1F
	if pusi {
		packet[1] |= 0x40
	}
	packet[2] = uint8(pid)
	packet[3] = 0x10 | (cc & 0x0F)
	n := copy(packet[HeaderSize:], payload)
	for i := HeaderSize + n; i < PacketSize; i++ {
		packet[i] = StuffingByte
	}
	return packet
}
