// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/asticode/go-astits"
	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/tsdmx/pkg/dmx"
	"github.com/q191201771/tsdmx/pkg/frontend"
	"github.com/q191201771/tsdmx/pkg/mpegts"
)

// 学习TS格式：分别用tsdmx和astits解析同一个TS文件的PAT、PMT，对比两者的结果
//
// Usage of ./bin/learnts:
//   -i string
//     	specify ts file
func main() {
	_ = nazalog.Init(func(option *nazalog.Option) {
		option.AssertBehavior = nazalog.AssertFatal
	})
	defer nazalog.Sync()

	filename := parseFlag()

	learnByTsdmx(filename)
	learnByAstits(filename)
}

func learnByTsdmx(filename string) {
	fp, err := os.Open(filename)
	nazalog.Assert(nil, err)
	d, err := dmx.Open(0, func(option *dmx.Option) {
		option.SourceOpener = func(deviceIndex int) (dmx.ByteSource, error) {
			return frontend.NewReaderSource(fp), nil
		}
	})
	nazalog.Assert(nil, err)
	defer d.Close()

	var pat *mpegts.Pat
	pmts := make(map[uint16]*mpegts.Pmt)
	pmtPids := make(map[uint16]bool)

	var filter, mask, mode [dmx.FilterSize]byte
	filter[0] = mpegts.TableIdPat
	mask[0] = 0xFF
	h, err := d.AllocateFilter(func(h dmx.FilterHandle, pid uint16, b []byte) {
		if pat != nil {
			return
		}
		p, err := mpegts.ParsePat(b)
		if err != nil {
			nazalog.Warnf("parse pat failed. err=%+v", err)
			return
		}
		pat = &p
	})
	nazalog.Assert(nil, err)
	nazalog.Assert(nil, d.ConfigureSectionFilter(h, mpegts.PidPat, filter, mask, mode, dmx.SectionFilterOptCheckCrc))
	nazalog.Assert(nil, d.Enable(h))

	onPmt := func(h dmx.FilterHandle, pid uint16, b []byte) {
		if _, ok := pmts[pid]; ok {
			return
		}
		p, err := mpegts.ParsePmt(b)
		if err != nil {
			nazalog.Warnf("parse pmt failed. pid=%d, err=%+v", pid, err)
			return
		}
		pmts[pid] = &p
	}

	for {
		err = d.PollOnce(100 * time.Millisecond)
		if err != nil {
			break
		}
		if pat == nil {
			continue
		}
		// 回调中不能操作dmx，所以在poll之后打开PMT filter
		for _, ppe := range pat.ProgramElements {
			if ppe.ProgramNumber == 0 || pmtPids[ppe.ProgramMapPid] {
				continue
			}
			pmtPids[ppe.ProgramMapPid] = true
			filter[0] = mpegts.TableIdPmt
			ph, err := d.AllocateFilter(onPmt)
			nazalog.Assert(nil, err)
			nazalog.Assert(nil, d.ConfigureSectionFilter(ph, ppe.ProgramMapPid, filter, mask, mode, dmx.SectionFilterOptCheckCrc))
			nazalog.Assert(nil, d.Enable(ph))
		}
	}

	nazalog.Infof("tsdmx. stat=%+v", d.Stat())
	if pat == nil {
		nazalog.Warnf("tsdmx. no pat found.")
		return
	}
	nazalog.Infof("tsdmx. pat=%+v", *pat)
	for pid, pmt := range pmts {
		nazalog.Infof("tsdmx. pid=%d, pmt=%+v", pid, *pmt)
	}
}

func learnByAstits(filename string) {
	fp, err := os.Open(filename)
	nazalog.Assert(nil, err)
	defer fp.Close()

	ad := astits.NewDemuxer(context.Background(), bufio.NewReader(fp))
	gotPat := false
	gotPmts := make(map[uint16]bool)
	for {
		data, err := ad.NextData()
		if err != nil {
			if !errors.Is(err, astits.ErrNoMorePackets) {
				nazalog.Warnf("astits. next data failed. err=%+v", err)
			}
			break
		}
		if data.PAT != nil && !gotPat {
			gotPat = true
			for _, p := range data.PAT.Programs {
				nazalog.Infof("astits. pat program. number=%d, pmt pid=%d", p.ProgramNumber, p.ProgramMapID)
			}
		}
		if data.PMT != nil && !gotPmts[data.PMT.ProgramNumber] {
			gotPmts[data.PMT.ProgramNumber] = true
			for _, es := range data.PMT.ElementaryStreams {
				nazalog.Infof("astits. pmt es. program=%d, pid=%d, stream_type=0x%02x",
					data.PMT.ProgramNumber, es.ElementaryPID, uint8(es.StreamType))
			}
		}
	}
}

func parseFlag() string {
	i := flag.String("i", "", "specify ts file")
	flag.Parse()
	if *i == "" {
		flag.Usage()
		_, _ = fmt.Fprintf(os.Stderr, `
Example:
  ./bin/learnts -i ./testdata/test.ts
`)
		os.Exit(1)
	}
	return *i
}
