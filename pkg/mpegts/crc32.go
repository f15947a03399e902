// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

// MPEG-2 CRC32，多项式 0x04C11DB7，不反转，初值 0xFFFFFFFF
//
// 注意，hash/crc32 只提供反转（LSB first）的实现，不能直接用于PSI section
var crc32Table [256]uint32

func init() {
	for i := 0; i < 256; i++ {
		crc := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ 0x04C11DB7
			} else {
				crc <<= 1
			}
		}
		crc32Table[i] = crc
	}
}

func CalcCrc32(crc uint32, buffer []byte) uint32 {
	for _, b := range buffer {
		crc = (crc << 8) ^ crc32Table[byte(crc>>24)^b]
	}
	return crc
}

// CheckSectionCrc32 对包含CRC_32字段的完整section计算，结果为0说明校验通过
func CheckSectionCrc32(section []byte) bool {
	if len(section) < SectionHeaderSize+4 {
		return false
	}
	return CalcCrc32(0xFFFFFFFF, section) == 0
}
