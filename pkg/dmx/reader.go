// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package dmx

import (
	"errors"
	"time"

	"github.com/q191201771/tsdmx/pkg/base"
	"github.com/q191201771/tsdmx/pkg/mpegts"
)

// PollOnce 等待采集流可读，读一次，解析并分发所有完整的TS packet
//
// 超时不是错误。重同步、section错位、continuity跳变、短读等流上的异常只记录日志和统计，不返回。
// 只返回采集流本身的错误（would block除外）。
func (d *DemuxInstance) PollOnce(timeout time.Duration) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return base.ErrDmxClosed
	}
	src := d.src
	d.mu.Unlock()

	readable, err := src.Poll(timeout)
	if err != nil {
		return err
	}
	if !readable {
		return nil
	}

	d.readMu.Lock()
	defer d.readMu.Unlock()

	b := d.carry.ReserveBytes(d.option.ReadChunkSize)
	n, err := src.Read(b)
	if err != nil && !errors.Is(err, base.ErrWouldBlock) {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return base.ErrDmxClosed
	}
	if n <= 0 {
		d.stat.ShortReads++
		if d.anomalyDump.ShouldDump() {
			d.anomalyDump.Outf("[%s] short read, readable but nothing to read.", d.uniqueKey)
		}
		return nil
	}
	d.carry.Flush(n)
	d.stat.ReadBytes += uint64(n)
	if d.dump != nil {
		if err := d.dump.Write(b[:n]); err != nil {
			Log.Errorf("[%s] record failed, stop recording. err=%+v", d.uniqueKey, err)
			_ = d.dump.Close()
			d.dump = nil
		}
	}

	d.parseCarryLocked()
	d.fireOneShotLocked()
	return nil
}

// Poll 同 PollOnce
func (d *DemuxInstance) Poll(timeout time.Duration) error {
	return d.PollOnce(timeout)
}

func (d *DemuxInstance) parseCarryLocked() {
	for {
		packet, skipped, _ := mpegts.NextTsPacket(d.carry.Bytes())
		if skipped > 0 {
			d.stat.ResyncCount++
			d.stat.SkippedBytes += uint64(skipped)
			if d.anomalyDump.ShouldDump() {
				d.anomalyDump.Outf("[%s] resync, skipped %d bytes.", d.uniqueKey, skipped)
			}
			d.carry.Skip(skipped)
		}
		if packet == nil {
			return
		}
		d.dispatchLocked(packet)
		d.carry.Skip(mpegts.PacketSize)
	}
}

func (d *DemuxInstance) dispatchLocked(packet []byte) {
	d.stat.Packets++

	h, err := mpegts.ParseTsPacketHeader(packet)
	if err != nil {
		d.stat.MalformedPackets++
		return
	}
	if h.IsNull() {
		return
	}
	ch := d.channels.Get(h.Pid)
	if ch == nil {
		return
	}
	if h.Err != 0 {
		d.stat.TransportErrors++
		return
	}

	discontinuity := false
	if h.HasAdaptation() {
		af, err := mpegts.ParseTsPacketAdaptation(packet[mpegts.HeaderSize:])
		if err == nil && af.Discontinuity == 1 {
			discontinuity = true
		}
	}
	prev := ch.cc.last
	if !ch.cc.update(h.Cc, h.HasPayload(), discontinuity) {
		d.stat.ContinuityErrors++
		if d.anomalyDump.ShouldDump() {
			d.anomalyDump.Outf("[%s] continuity mismatch. pid=%d, prev=%d, cur=%d",
				d.uniqueKey, h.Pid, prev, h.Cc)
		}
	}

	if !h.IsDemuxable() {
		return
	}
	payload, err := mpegts.TsPacketPayload(packet, h)
	if err != nil {
		d.stat.MalformedPackets++
		if d.anomalyDump.ShouldDump() {
			d.anomalyDump.Outf("[%s] malformed packet. pid=%d, err=%+v", d.uniqueKey, h.Pid, err)
		}
		return
	}

	d.stat.DispatchedPackets++
	switch ch.kind {
	case ChannelKindSection:
		d.onSectionPayload(ch, payload, h.IsPayloadUnitStart())
	case ChannelKindPes:
		d.onPesPayload(ch, payload)
	}
}

func (d *DemuxInstance) fireOneShotLocked() {
	if len(d.pendingOneShot) == 0 {
		return
	}
	changed := false
	for _, f := range d.pendingOneShot {
		if !f.enabled || !f.fired {
			continue
		}
		Log.Debugf("[%s] one-shot filter fired, disable. handle=%s, pid=%d", d.uniqueKey, f.handle, f.pid)
		d.disableLocked(f)
		changed = true
	}
	d.pendingOneShot = d.pendingOneShot[:0]
	if changed {
		d.rebuildLocked()
	}
}
