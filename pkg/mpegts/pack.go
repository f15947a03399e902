// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

// Frame 一个PES包的数据，用于打包成TS packet
//
type Frame struct {
	Pts uint64 // 90kHz
	Dts uint64
	Cc  uint8 // continuity_counter of TS Header

	Pid uint16
	Sid uint8 // stream_id of PES Header

	Raw []byte
}

const (
	StreamIdAudio = 0xC0
	StreamIdVideo = 0xE0
)

// Pack 把Frame打包成TS packet
//
// 注意，内部会增加 Frame.Cc 的值
//
// @return: 若干个188字节的TS packet首尾相连，内存块为独立申请
func (frame *Frame) Pack() []byte {
	pes := frame.packPesHeader()
	pes = append(pes, frame.Raw...)

	var out []byte
	first := true
	for len(pes) > 0 {
		packet := make([]byte, PacketSize)
		packet[0] = SyncByte
		if first {
			packet[1] = 0x40 // payload_unit_start_indicator
		}
		packet[1] |= uint8((frame.Pid >> 8) & 0x1F)
		packet[2] = uint8(frame.Pid & 0xFF)
		packet[3] = 0x10 | (frame.Cc & 0x0F)
		frame.Cc = (frame.Cc + 1) & 0x0F

		inSize := len(pes)
		if inSize >= PayloadSize {
			copy(packet[HeaderSize:], pes[:PayloadSize])
			pes = pes[PayloadSize:]
		} else {
			// 最后一个packet写不满，真实数据挪到尾部，中间用adaptation field填充
			stuffSize := PayloadSize - inSize
			packet[3] |= 0x20
			packet[4] = uint8(stuffSize - 1) // adaptation_field_length
			if stuffSize >= 2 {
				packet[5] = 0 // flags
				for i := 6; i < HeaderSize+stuffSize; i++ {
					packet[i] = StuffingByte
				}
			}
			copy(packet[HeaderSize+stuffSize:], pes)
			pes = nil
		}
		out = append(out, packet...)
		first = false
	}
	return out
}

// -----PES Header------------
// packet_start_code_prefix  [24b] 0x000001
// stream_id                 [8b]
// PES_packet_length         [16b]
// '10'                      [2b]
// ...                       [6b]  0
// PTS_DTS_flags             [2b]
// ...                       [6b]  0
// PES_header_data_length    [8b]
// PTS [DTS]                 [40b] [40b]
// ---------------------------
func (frame *Frame) packPesHeader() []byte {
	headerSize := uint8(5)
	flags := uint8(0x80)
	if frame.Dts != frame.Pts {
		headerSize += 5
		flags |= 0x40
	}

	pesSize := len(frame.Raw) + int(headerSize) + 3
	if pesSize > 0xFFFF {
		pesSize = 0
	}

	out := make([]byte, 9+int(headerSize))
	out[0] = 0x00
	out[1] = 0x00
	out[2] = 0x01
	out[3] = frame.Sid
	out[4] = uint8(pesSize >> 8)
	out[5] = uint8(pesSize & 0xFF)
	out[6] = 0x80
	out[7] = flags
	out[8] = headerSize
	packPts(out[9:], flags>>6, frame.Pts)
	if frame.Dts != frame.Pts {
		packPts(out[14:], 1, frame.Dts)
	}
	return out
}

// 注意，除PTS外，DTS也使用这个函数打包
func packPts(out []byte, fb uint8, pts uint64) {
	var val uint64
	out[0] = (fb << 4) | (uint8(pts>>29) & 0x0E) | 1

	val = (((pts >> 15) & 0x7FFF) << 1) | 1
	out[1] = uint8(val >> 8)
	out[2] = uint8(val)

	val = ((pts & 0x7FFF) << 1) | 1
	out[3] = uint8(val >> 8)
	out[4] = uint8(val)
}
