// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/q191201771/naza/pkg/assert"
	"github.com/q191201771/tsdmx/pkg/base"
	"github.com/q191201771/tsdmx/pkg/mpegts"
)

func makePacketWithAdaptation(pid uint16, cc uint8, afLength int, payload []byte) []byte {
	packet := make([]byte, mpegts.PacketSize)
	packet[0] = mpegts.SyncByte
	packet[1] = uint8(pid>>8) & 0x1F
	packet[2] = uint8(pid)
	if payload != nil {
		packet[3] = 0x30 | (cc & 0x0F)
	} else {
		packet[3] = 0x20 | (cc & 0x0F)
	}
	packet[4] = uint8(afLength)
	if 5+afLength < mpegts.PacketSize {
		copy(packet[5+afLength:], payload)
	}
	return packet
}

func TestParseTsPacketHeader_Pid(t *testing.T) {
	for pid := 0; pid <= mpegts.PidMax; pid++ {
		packet := mpegts.PackTsPacket(uint16(pid), uint8(pid), pid%2 == 0, nil)
		h, err := mpegts.ParseTsPacketHeader(packet)
		assert.Equal(t, nil, err)
		want := uint16(packet[1]&0x1F)<<8 | uint16(packet[2])
		assert.Equal(t, want, h.Pid)
		assert.Equal(t, uint16(pid), h.Pid)
		assert.Equal(t, uint8(pid)&0x0F, h.Cc)
		assert.Equal(t, pid%2 == 0, h.IsPayloadUnitStart())

		p, err := mpegts.PidOf(packet)
		assert.Equal(t, nil, err)
		assert.Equal(t, h.Pid, p)
	}
}

func TestParseTsPacketHeader_Flags(t *testing.T) {
	packet := mpegts.PackTsPacket(0x100, 5, false, []byte{1, 2, 3})
	h, err := mpegts.ParseTsPacketHeader(packet)
	assert.Equal(t, nil, err)
	assert.Equal(t, uint8(0), h.Err)
	assert.Equal(t, true, h.HasPayload())
	assert.Equal(t, false, h.HasAdaptation())
	assert.Equal(t, false, h.IsScrambled())
	assert.Equal(t, true, h.IsDemuxable())

	packet[1] |= 0x80
	h, _ = mpegts.ParseTsPacketHeader(packet)
	assert.Equal(t, uint8(1), h.Err)
	assert.Equal(t, false, h.IsDemuxable())

	packet = mpegts.PackTsPacket(0x100, 5, false, nil)
	packet[3] |= 0x80
	h, _ = mpegts.ParseTsPacketHeader(packet)
	assert.Equal(t, true, h.IsScrambled())
	assert.Equal(t, false, h.IsDemuxable())

	packet = mpegts.PackTsPacket(mpegts.PidNull, 0, false, nil)
	h, _ = mpegts.ParseTsPacketHeader(packet)
	assert.Equal(t, true, h.IsNull())
	assert.Equal(t, false, h.IsDemuxable())

	packet = makePacketWithAdaptation(0x100, 0, 183, nil)
	h, _ = mpegts.ParseTsPacketHeader(packet)
	assert.Equal(t, false, h.HasPayload())
	assert.Equal(t, false, h.IsDemuxable())
}

func TestParseTsPacketHeader_Error(t *testing.T) {
	_, err := mpegts.ParseTsPacketHeader([]byte{0x47, 0x00})
	assert.Equal(t, true, errors.Is(err, base.ErrShortPacket))

	_, err = mpegts.ParseTsPacketHeader([]byte{0x48, 0x00, 0x00, 0x10})
	assert.Equal(t, true, errors.Is(err, base.ErrSyncByte))

	_, err = mpegts.PidOf([]byte{0x47})
	assert.Equal(t, true, errors.Is(err, base.ErrShortPacket))
}

func TestTsPacketPayload(t *testing.T) {
	golden := []byte{0xAA, 0xBB}

	packet := mpegts.PackTsPacket(0x100, 0, false, golden)
	h, _ := mpegts.ParseTsPacketHeader(packet)
	payload, err := mpegts.TsPacketPayload(packet, h)
	assert.Equal(t, nil, err)
	assert.Equal(t, mpegts.PayloadSize, len(payload))
	assert.Equal(t, golden, payload[:2])

	for _, afLength := range []int{0, 1, 10, 182} {
		packet = makePacketWithAdaptation(0x100, 0, afLength, golden)
		h, _ = mpegts.ParseTsPacketHeader(packet)
		payload, err = mpegts.TsPacketPayload(packet, h)
		assert.Equal(t, nil, err)
		assert.Equal(t, mpegts.PayloadSize-1-afLength, len(payload))
	}

	packet = makePacketWithAdaptation(0x100, 0, 200, []byte{})
	h, _ = mpegts.ParseTsPacketHeader(packet)
	_, err = mpegts.TsPacketPayload(packet, h)
	assert.Equal(t, true, errors.Is(err, base.ErrAdaptationOverflow))

	packet = makePacketWithAdaptation(0x100, 0, 183, nil)
	h, _ = mpegts.ParseTsPacketHeader(packet)
	payload, err = mpegts.TsPacketPayload(packet, h)
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(payload))
}

func TestParseTsPacketAdaptation(t *testing.T) {
	packet := makePacketWithAdaptation(0x100, 0, 1, []byte{})
	packet[5] = 0x80
	af, err := mpegts.ParseTsPacketAdaptation(packet[4:])
	assert.Equal(t, nil, err)
	assert.Equal(t, uint8(1), af.Length)
	assert.Equal(t, uint8(1), af.Discontinuity)

	af, err = mpegts.ParseTsPacketAdaptation([]byte{0})
	assert.Equal(t, nil, err)
	assert.Equal(t, uint8(0), af.Discontinuity)

	_, err = mpegts.ParseTsPacketAdaptation(nil)
	assert.Equal(t, true, errors.Is(err, base.ErrShortPacket))
}

func TestNextTsPacket(t *testing.T) {
	garbage := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	packet := mpegts.PackTsPacket(0x100, 0, true, []byte{0x00})
	stream := append(append([]byte{}, garbage...), packet...)
	stream = append(stream, packet[:100]...)

	p, skipped, rest := mpegts.NextTsPacket(stream)
	assert.Equal(t, 5, skipped)
	assert.Equal(t, packet, p)
	assert.Equal(t, 100, len(rest))

	p, skipped, rest = mpegts.NextTsPacket(rest)
	assert.Equal(t, true, p == nil)
	assert.Equal(t, 0, skipped)
	assert.Equal(t, packet[:100], rest)

	p, skipped, rest = mpegts.NextTsPacket(garbage)
	assert.Equal(t, true, p == nil)
	assert.Equal(t, 5, skipped)
	assert.Equal(t, 0, len(rest))
}

func TestSection(t *testing.T) {
	s := mpegts.Section{
		TableId: 0x4A,
		Body:    []byte{1, 2, 3, 4, 5, 6, 7},
	}
	b := s.Pack()
	assert.Equal(t, 10, len(b))
	assert.Equal(t, 10, mpegts.SectionLength(b))
	assert.Equal(t, uint8(0x4A), b[0])

	s = mpegts.Section{
		TableId:          0x42,
		SyntaxIndicator:  true,
		TableIdExtension: 0x1234,
		Version:          3,
		Body:             []byte{0xAB},
	}
	b = s.Pack()
	assert.Equal(t, 3+5+1+4, len(b))
	assert.Equal(t, len(b), mpegts.SectionLength(b))
	assert.Equal(t, uint8(0x80), b[1]&0x80)
	assert.Equal(t, uint8(0x12), b[3])
	assert.Equal(t, uint8(0x34), b[4])
	assert.Equal(t, uint8(3), (b[5]>>1)&0x1F)
	assert.Equal(t, true, mpegts.CheckSectionCrc32(b))
	b[8] ^= 0xFF
	assert.Equal(t, false, mpegts.CheckSectionCrc32(b))
}

func TestPatPmt(t *testing.T) {
	ppes := []mpegts.PatProgramElement{
		{ProgramNumber: 0, ProgramMapPid: 0x10},
		{ProgramNumber: 1, ProgramMapPid: 0x1000},
		{ProgramNumber: 2, ProgramMapPid: 0x1001},
	}
	b := mpegts.PackPat(7, 1, ppes)
	assert.Equal(t, true, mpegts.CheckSectionCrc32(b))
	pat, err := mpegts.ParsePat(b)
	assert.Equal(t, nil, err)
	assert.Equal(t, uint16(7), pat.TransportStreamId)
	assert.Equal(t, uint8(1), pat.Version)
	assert.Equal(t, ppes, pat.ProgramElements)
	assert.Equal(t, true, pat.SearchPid(0x1001))
	assert.Equal(t, false, pat.SearchPid(0x10))

	es := []mpegts.PmtProgramElement{
		{StreamType: 0x1B, Pid: 0x100},
		{StreamType: 0x0F, Pid: 0x101},
	}
	b = mpegts.PackPmt(1, 0, 0x100, es)
	assert.Equal(t, true, mpegts.CheckSectionCrc32(b))
	pmt, err := mpegts.ParsePmt(b)
	assert.Equal(t, nil, err)
	assert.Equal(t, uint16(1), pmt.ProgramNumber)
	assert.Equal(t, uint16(0x100), pmt.PcrPid)
	assert.Equal(t, es, pmt.ProgramElements)
	assert.Equal(t, uint8(0x0F), pmt.SearchPid(0x101).StreamType)
	assert.Equal(t, true, pmt.SearchPid(0x102) == nil)

	_, err = mpegts.ParsePat(b[:5])
	assert.Equal(t, true, err != nil)
	_, err = mpegts.ParsePmt(b[:len(b)-1])
	assert.Equal(t, true, err != nil)
}

func TestPacketizeSections(t *testing.T) {
	big := mpegts.Section{TableId: 0x40, Body: bytes.Repeat([]byte{0x11}, 300)}
	small := mpegts.Section{TableId: 0x41, Body: []byte{0x22}}
	cc := uint8(14)
	out := mpegts.PacketizeSections(0x20, &cc, big.Pack(), small.Pack())
	// 1 + 303 + 4 = 308 bytes of payload -> 2 packets
	assert.Equal(t, 2*mpegts.PacketSize, len(out))
	assert.Equal(t, uint8(0), cc)

	h, _ := mpegts.ParseTsPacketHeader(out)
	assert.Equal(t, true, h.IsPayloadUnitStart())
	assert.Equal(t, uint8(14), h.Cc)
	assert.Equal(t, uint8(0), out[4])
	assert.Equal(t, uint8(0x40), out[5])

	h, _ = mpegts.ParseTsPacketHeader(out[mpegts.PacketSize:])
	assert.Equal(t, false, h.IsPayloadUnitStart())
	assert.Equal(t, uint8(15), h.Cc)
	assert.Equal(t, uint8(mpegts.StuffingByte), out[len(out)-1])
}

func TestFramePack(t *testing.T) {
	frame := mpegts.Frame{
		Pts: 90000,
		Dts: 90000,
		Pid: 0x101,
		Sid: mpegts.StreamIdAudio,
		Raw: bytes.Repeat([]byte{0x5A}, 400),
	}
	out := frame.Pack()
	assert.Equal(t, 0, len(out)%mpegts.PacketSize)
	assert.Equal(t, uint8(len(out)/mpegts.PacketSize)&0x0F, frame.Cc)

	var pes []byte
	for i := 0; i < len(out); i += mpegts.PacketSize {
		packet := out[i : i+mpegts.PacketSize]
		h, err := mpegts.ParseTsPacketHeader(packet)
		assert.Equal(t, nil, err)
		assert.Equal(t, uint16(0x101), h.Pid)
		assert.Equal(t, i == 0, h.IsPayloadUnitStart())
		payload, err := mpegts.TsPacketPayload(packet, h)
		assert.Equal(t, nil, err)
		pes = append(pes, payload...)
	}
	assert.Equal(t, []byte{0, 0, 1, mpegts.StreamIdAudio}, pes[:4])
	assert.Equal(t, 9+5+400, len(pes))
	assert.Equal(t, frame.Raw, pes[14:])
}
