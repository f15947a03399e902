// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import "bytes"

// NextTsPacket 在`b`中定位下一个TS packet
//
// @return packet:  完整的188字节packet，引用`b`的内存块；剩余数据不足一个packet时为nil
// @return skipped: sync byte之前被跳过的字节数，不为0说明发生了重同步
// @return rest:    packet之后的数据；packet为nil时，为从sync byte开始的残余数据，需要留到下次和新数据拼接
//
func NextTsPacket(b []byte) (packet []byte, skipped int, rest []byte) {
	i := bytes.IndexByte(b, SyncByte)
	if i < 0 {
		return nil, len(b), nil
	}
	if len(b)-i < PacketSize {
		return nil, i, b[i:]
	}
	return b[i : i+PacketSize], i, b[i+PacketSize:]
}
