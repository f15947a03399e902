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

// ---------------------------------------------------------------------------------------------------
// Program association section
// <iso13818-1.pdf> <2.4.4.3> <page 61/174>
// table_id                 [8b] *
// section_syntax_indicator [1b]
// '0'                      [1b]
// reserved                 [2b]
// section_length           [12b] **
// transport_stream_id      [16b] **
// reserved                 [2b]
// version_number           [5b]
// current_next_indicator   [1b]  *
// section_number           [8b]  *
// last_section_number      [8b]  *
// -----loop-----
// program_number           [16b] **
// reserved                 [3b]
// program_map_PID          [13b] ** if program_number == 0 then network_PID else then program_map_PID
// --------------
// CRC_32                   [32b] ****
// ---------------------------------------------------------------------------------------------------
type Pat struct {
	TransportStreamId uint16
	Version           uint8
	ProgramElements   []PatProgramElement
}

type PatProgramElement struct {
	ProgramNumber uint16
	ProgramMapPid uint16
}

const TableIdPat = 0x00

// ParsePat
//
// @param b: 完整的section，从table_id开始（不包含pointer field）
func ParsePat(b []byte) (pat Pat, err error) {
	if len(b) < SectionHeaderSize+5+4 {
		return pat, base.NewErrShortPacket(SectionHeaderSize+5+4, len(b))
	}
	total := SectionLength(b)
	if total > len(b) || total < SectionHeaderSize+5+4 {
		return pat, base.ErrShortSectionPayload
	}

	br := nazabits.NewBitReader(b[SectionHeaderSize:total])
	pat.TransportStreamId, _ = br.ReadBits16(16)
	_, _ = br.ReadBits8(2)
	pat.Version, _ = br.ReadBits8(5)
	_, _ = br.ReadBits8(1)
	_, _ = br.ReadBits8(8)
	_, _ = br.ReadBits8(8)

	for n := total - SectionHeaderSize - 5 - 4; n >= 4; n -= 4 {
		var ppe PatProgramElement
		ppe.ProgramNumber, _ = br.ReadBits16(16)
		_, _ = br.ReadBits8(3)
		ppe.ProgramMapPid, _ = br.ReadBits16(13)
		pat.ProgramElements = append(pat.ProgramElements, ppe)
	}
	return
}

// PackPat 打包PAT section
func PackPat(transportStreamId uint16, version uint8, ppes []PatProgramElement) []byte {
	body := make([]byte, 4*len(ppes))
	for i, ppe := range ppes {
		bw := nazabits.NewBitWriter(body[4*i:])
		bw.WriteBits16(16, ppe.ProgramNumber)
		bw.WriteBits8(3, 0xff)
		bw.WriteBits16(13, ppe.ProgramMapPid)
	}
	s := Section{
		TableId:          TableIdPat,
		SyntaxIndicator:  true,
		TableIdExtension: transportStreamId,
		Version:          version,
		Body:             body,
	}
	return s.Pack()
}

// SearchPid PID是否为某个节目的PMT PID。program_number为0的是NIT，不算
func (pat *Pat) SearchPid(pid uint16) bool {
	for _, ppe := range pat.ProgramElements {
		if ppe.ProgramNumber != 0 && pid == ppe.ProgramMapPid {
			return true
		}
	}
	return false
}
