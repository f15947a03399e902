// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package dmx

import (
	"github.com/q191201771/tsdmx/pkg/mpegts"
)

// sectionAssembler 单个section channel的重组buffer
type sectionAssembler struct {
	buf    []byte
	length int // 已累积的字节数
	need   int // section总长度，header不足3字节时为0

	// 是否已经遇到过payload_unit_start_indicator，没有的话非起始packet直接丢弃
	synced bool
}

func (sa *sectionAssembler) init() {
	sa.buf = make([]byte, SectionBufferSize)
	sa.reset()
	sa.synced = false
}

func (sa *sectionAssembler) reset() {
	sa.length = 0
	sa.need = 0
}

// feed 从`b`中取数据累积到buf，直到section完整或者`b`用完
//
// @return n:        消费的字节数
// @return complete: section已完整，为 sa.buf[:sa.length]
// @return overflow: 声明的长度超过buffer容量
func (sa *sectionAssembler) feed(b []byte) (n int, complete bool, overflow bool) {
	for n < len(b) {
		var want int
		if sa.length < mpegts.SectionHeaderSize {
			want = mpegts.SectionHeaderSize - sa.length
		} else {
			want = sa.need - sa.length
		}
		if want > len(b)-n {
			want = len(b) - n
		}
		copy(sa.buf[sa.length:], b[n:n+want])
		sa.length += want
		n += want

		if sa.need == 0 && sa.length == mpegts.SectionHeaderSize {
			sa.need = mpegts.SectionLength(sa.buf)
			if sa.need > len(sa.buf) {
				return n, false, true
			}
		}
		if sa.need != 0 && sa.length == sa.need {
			return n, true, false
		}
	}
	return n, false, false
}

// onSectionPayload 处理section channel上一个TS packet的payload
func (d *DemuxInstance) onSectionPayload(ch *Channel, payload []byte, pusi bool) {
	sa := &ch.sa

	if pusi {
		if len(payload) == 0 {
			return
		}
		pointer := int(payload[0])
		payload = payload[1:]
		if pointer > len(payload) {
			d.stat.MisplacedSections++
			if d.anomalyDump.ShouldDump() {
				d.anomalyDump.Outf("[%s] misplaced section, pointer field out of range. pid=%d, pointer=%d, payload=%d",
					d.uniqueKey, ch.pid, pointer, len(payload))
			}
			sa.reset()
			sa.synced = false
			return
		}

		// pointer field之前的数据属于上一个section，pointer为0时上一个section必须已经完整
		if sa.synced && sa.length > 0 {
			complete, overflow := false, false
			if pointer > 0 {
				_, complete, overflow = sa.feed(payload[:pointer])
			}
			if complete {
				d.deliverSection(ch, sa.buf[:sa.length])
			} else if overflow {
				d.onSectionOverflow(ch)
			} else {
				d.stat.MisplacedSections++
				if d.anomalyDump.ShouldDump() {
					d.anomalyDump.Outf("[%s] misplaced section, incomplete at next unit start. pid=%d, have=%d, need=%d",
						d.uniqueKey, ch.pid, sa.length, sa.need)
				}
			}
		}
		sa.reset()
		sa.synced = true
		payload = payload[pointer:]
	} else if !sa.synced {
		return
	}

	for len(payload) > 0 {
		if sa.length == 0 && payload[0] == mpegts.StuffingByte {
			return
		}
		n, complete, overflow := sa.feed(payload)
		if overflow {
			d.onSectionOverflow(ch)
			return
		}
		if !complete {
			return
		}
		d.deliverSection(ch, sa.buf[:sa.length])
		sa.reset()
		payload = payload[n:]
	}
}

func (d *DemuxInstance) onSectionOverflow(ch *Channel) {
	d.stat.SectionsDropped++
	if d.anomalyDump.ShouldDump() {
		d.anomalyDump.Outf("[%s] section overflow, drop. pid=%d, need=%d, cap=%d",
			d.uniqueKey, ch.pid, ch.sa.need, len(ch.sa.buf))
	}
	ch.sa.reset()
	ch.sa.synced = false
}

// deliverSection 按enable顺序找第一个匹配的filter回调
func (d *DemuxInstance) deliverSection(ch *Channel, section []byte) {
	for _, f := range ch.filters {
		if f.fired || !f.matchSection(section) {
			continue
		}
		d.stat.SectionsDelivered++
		if f.onData != nil {
			f.onData(f.handle, ch.pid, section)
		}
		if f.option.OneShot {
			f.fired = true
			d.pendingOneShot = append(d.pendingOneShot, f)
		}
		return
	}
	d.stat.SectionsUnmatched++
}
