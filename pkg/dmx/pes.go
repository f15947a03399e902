// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package dmx

// onPesPayload PES channel上每个packet的payload原样转发，每个packet一次
//
// 一个PES pid同时只允许一个启用的filter
func (d *DemuxInstance) onPesPayload(ch *Channel, payload []byte) {
	d.stat.PesPackets++
	for _, f := range ch.filters {
		if f.pesOutput != PesOutputTap || f.onData == nil {
			continue
		}
		f.onData(f.handle, ch.pid, payload)
	}
}
