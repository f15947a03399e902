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

// Pmt
//
// ----------------------------------------
// Program Map Table
// <iso13818-1.pdf> <2.4.4.8> <page 64/174>
// table_id                 [8b]  *
// section_syntax_indicator [1b]
// 0                        [1b]
// reserved                 [2b]
// section_length           [12b] **
// program_number           [16b] **
// reserved                 [2b]
// version_number           [5b]
// current_next_indicator   [1b]  *
// section_number           [8b]  *
// last_section_number      [8b]  *
// reserved                 [3b]
// PCR_PID                  [13b] **
// reserved                 [4b]
// program_info_length      [12b] **
// -----loop-----
// stream_type              [8b]  *
// reserved                 [3b]
// elementary_PID           [13b] **
// reserved                 [4b]
// ES_info_length           [12b] **
// --------------
// CRC32                    [32b] ****
// ----------------------------------------
//
type Pmt struct {
	ProgramNumber   uint16
	Version         uint8
	PcrPid          uint16
	ProgramElements []PmtProgramElement
}

type PmtProgramElement struct {
	StreamType uint8
	Pid        uint16
}

const TableIdPmt = 0x02

// ParsePmt
//
// @param b: 完整的section，从table_id开始（不包含pointer field）
func ParsePmt(b []byte) (pmt Pmt, err error) {
	const fixed = SectionHeaderSize + 9 + 4
	if len(b) < fixed {
		return pmt, base.NewErrShortPacket(fixed, len(b))
	}
	total := SectionLength(b)
	if total > len(b) || total < fixed {
		return pmt, base.ErrShortSectionPayload
	}

	br := nazabits.NewBitReader(b[SectionHeaderSize : total-4])
	pmt.ProgramNumber, _ = br.ReadBits16(16)
	_, _ = br.ReadBits8(2)
	pmt.Version, _ = br.ReadBits8(5)
	_, _ = br.ReadBits8(1)
	_, _ = br.ReadBits8(8)
	_, _ = br.ReadBits8(8)
	_, _ = br.ReadBits8(3)
	pmt.PcrPid, _ = br.ReadBits16(13)
	_, _ = br.ReadBits8(4)
	pil, _ := br.ReadBits16(12)

	remain := total - fixed
	if int(pil) > remain {
		return pmt, base.ErrShortSectionPayload
	}
	if pil != 0 {
		_, _ = br.ReadBytes(uint(pil))
	}
	remain -= int(pil)

	for remain >= 5 {
		var ppe PmtProgramElement
		ppe.StreamType, _ = br.ReadBits8(8)
		_, _ = br.ReadBits8(3)
		ppe.Pid, _ = br.ReadBits16(13)
		_, _ = br.ReadBits8(4)
		esil, _ := br.ReadBits16(12)
		remain -= 5
		if int(esil) > remain {
			return pmt, base.ErrShortSectionPayload
		}
		if esil != 0 {
			_, _ = br.ReadBytes(uint(esil))
		}
		remain -= int(esil)
		pmt.ProgramElements = append(pmt.ProgramElements, ppe)
	}
	return
}

// PackPmt 打包PMT section，不带任何descriptor
func PackPmt(programNumber uint16, version uint8, pcrPid uint16, ppes []PmtProgramElement) []byte {
	body := make([]byte, 4+5*len(ppes))
	bw := nazabits.NewBitWriter(body)
	bw.WriteBits8(3, 0xff)
	bw.WriteBits16(13, pcrPid)
	bw.WriteBits8(4, 0xff)
	bw.WriteBits16(12, 0)
	for _, ppe := range ppes {
		bw.WriteBits8(8, ppe.StreamType)
		bw.WriteBits8(3, 0xff)
		bw.WriteBits16(13, ppe.Pid)
		bw.WriteBits8(4, 0xff)
		bw.WriteBits16(12, 0)
	}
	s := Section{
		TableId:          TableIdPmt,
		SyntaxIndicator:  true,
		TableIdExtension: programNumber,
		Version:          version,
		Body:             body,
	}
	return s.Pack()
}

func (pmt *Pmt) SearchPid(pid uint16) *PmtProgramElement {
	for i := range pmt.ProgramElements {
		if pmt.ProgramElements[i].Pid == pid {
			return &pmt.ProgramElements[i]
		}
	}
	return nil
}
