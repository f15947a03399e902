// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package logic

import (
	"github.com/q191201771/tsdmx/pkg/dmx"
	"github.com/q191201771/tsdmx/pkg/mpegts"
)

// discoverer 根据PAT打开各节目的PMT filter，根据PMT打开各es的pes filter
//
// 数据回调里不能调用 dmx.DemuxInstance，所以回调只把section缓存下来，poll返回后再由 apply 处理
type discoverer struct {
	r *Runner

	pmtPids map[uint16]struct{}
	esPids  map[uint16]struct{}

	pendingPats [][]byte
	pendingPmts [][]byte
}

func newDiscoverer(r *Runner) *discoverer {
	return &discoverer{
		r:       r,
		pmtPids: make(map[uint16]struct{}),
		esPids:  make(map[uint16]struct{}),
	}
}

func (dc *discoverer) start() error {
	for i := range dc.r.config.PesFilters {
		dc.esPids[dc.r.config.PesFilters[i].Pid] = struct{}{}
	}

	var filter, mask, mode [dmx.FilterSize]byte
	filter[0] = mpegts.TableIdPat
	mask[0] = 0xFF
	_, err := dc.r.addSectionFilterWithCallback(mpegts.PidPat, filter, mask, mode, dc.onPat, dmx.SectionFilterOptCheckCrc)
	return err
}

func (dc *discoverer) onPat(h dmx.FilterHandle, pid uint16, b []byte) {
	dc.pendingPats = append(dc.pendingPats, append([]byte(nil), b...))
	dc.r.onSection(h, pid, b)
}

func (dc *discoverer) onPmt(h dmx.FilterHandle, pid uint16, b []byte) {
	dc.pendingPmts = append(dc.pendingPmts, append([]byte(nil), b...))
	dc.r.onSection(h, pid, b)
}

func (dc *discoverer) apply() {
	uk := dc.r.d.UniqueKey()

	for _, b := range dc.pendingPats {
		pat, err := mpegts.ParsePat(b)
		if err != nil {
			Log.Warnf("[%s] parse pat failed. err=%+v", uk, err)
			continue
		}
		for _, ppe := range pat.ProgramElements {
			if ppe.ProgramNumber == 0 {
				continue
			}
			if _, ok := dc.pmtPids[ppe.ProgramMapPid]; ok {
				continue
			}
			dc.pmtPids[ppe.ProgramMapPid] = struct{}{}
			var filter, mask, mode [dmx.FilterSize]byte
			filter[0] = mpegts.TableIdPmt
			mask[0] = 0xFF
			if _, err = dc.r.addSectionFilterWithCallback(ppe.ProgramMapPid, filter, mask, mode, dc.onPmt, dmx.SectionFilterOptCheckCrc); err != nil {
				Log.Warnf("[%s] add pmt filter failed. pid=%d, err=%+v", uk, ppe.ProgramMapPid, err)
				continue
			}
			Log.Infof("[%s] discover program. number=%d, pmt pid=%d", uk, ppe.ProgramNumber, ppe.ProgramMapPid)
		}
	}
	dc.pendingPats = dc.pendingPats[:0]

	for _, b := range dc.pendingPmts {
		pmt, err := mpegts.ParsePmt(b)
		if err != nil {
			Log.Warnf("[%s] parse pmt failed. err=%+v", uk, err)
			continue
		}
		for _, ppe := range pmt.ProgramElements {
			if _, ok := dc.esPids[ppe.Pid]; ok {
				continue
			}
			dc.esPids[ppe.Pid] = struct{}{}
			if _, err = dc.r.addPesFilter(ppe.Pid, dmx.PesOutputTap); err != nil {
				Log.Warnf("[%s] add pes filter failed. pid=%d, err=%+v", uk, ppe.Pid, err)
				continue
			}
			Log.Infof("[%s] discover es. program=%d, pid=%d, stream_type=0x%02x", uk, pmt.ProgramNumber, ppe.Pid, ppe.StreamType)
		}
	}
	dc.pendingPmts = dc.pendingPmts[:0]
}
