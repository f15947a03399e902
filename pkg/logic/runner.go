// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package logic

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/q191201771/naza/pkg/nazaerrors"
	"github.com/q191201771/tsdmx/pkg/base"
	"github.com/q191201771/tsdmx/pkg/dmx"
	"github.com/q191201771/tsdmx/pkg/frontend"
	"github.com/q191201771/tsdmx/pkg/mpegts"
)

// Runner 按配置打开输入和 dmx.DemuxInstance，配置filter，驱动poll循环
type Runner struct {
	config *Config

	d  *dmx.DemuxInstance
	fe *frontend.SoftFrontend

	discover *discoverer

	// 以下只在数据回调中访问，回调由poll协程同步调用
	writers   map[string]*mpegts.FileWriter
	delivered map[uint16]int
	outDump   base.LogDump

	stopFlag int32

	disposeOnce sync.Once
}

func NewRunner(config *Config) *Runner {
	return &Runner{
		config:    config,
		writers:   make(map[string]*mpegts.FileWriter),
		delivered: make(map[uint16]int),
		outDump:   base.NewLogDump(Log, outLogDumpMaxNum),
	}
}

// Start 打开输入以及解复用实例，启用配置中的filter
func (r *Runner) Start() error {
	src, err := OpenInput(r.config.Input)
	if err != nil {
		return err
	}

	var tapDevice dmx.TapDevice
	opener := func(deviceIndex int) (dmx.ByteSource, error) {
		return src, nil
	}
	if r.config.SoftTap {
		r.fe = frontend.NewSoftFrontend(r.config.DeviceIndex, src)
		tapDevice = r.fe
		opener = r.fe.Opener
	}

	r.d, err = dmx.Open(r.config.DeviceIndex, func(option *dmx.Option) {
		option.SourceOpener = opener
		option.TapDevice = tapDevice
		option.RecordFilename = r.config.RecordFilename
	})
	if err != nil {
		_ = src.Close()
		return err
	}

	if r.config.OutDir != "" {
		if err = os.MkdirAll(r.config.OutDir, 0755); err != nil {
			return err
		}
	}

	for i := range r.config.SectionFilters {
		sfc := &r.config.SectionFilters[i]
		if _, err = r.addSectionFilter(sfc.Pid, sfc); err != nil {
			return err
		}
	}
	for i := range r.config.PesFilters {
		pfc := &r.config.PesFilters[i]
		output, _ := pfc.PesOutput()
		if _, err = r.addPesFilter(pfc.Pid, output); err != nil {
			return err
		}
	}

	if r.config.AutoDiscover {
		r.discover = newDiscoverer(r)
		if err = r.discover.start(); err != nil {
			return err
		}
	}

	Log.Infof("[%s] runner started. input=%s, active=%v", r.d.UniqueKey(), r.config.Input, r.d.ActivePids())
	return nil
}

// RunLoop 阻塞直到输入结束、达到 Config.MaxPolls、调用了 Stop 或者出错
func (r *Runner) RunLoop() error {
	timeout := time.Duration(r.config.PollTimeoutMs) * time.Millisecond
	for i := 0; r.config.MaxPolls <= 0 || i < r.config.MaxPolls; i++ {
		if atomic.LoadInt32(&r.stopFlag) == 1 {
			return nil
		}
		if err := r.d.PollOnce(timeout); err != nil {
			if errors.Is(err, io.EOF) {
				Log.Infof("[%s] input reach end.", r.d.UniqueKey())
				return nil
			}
			return err
		}
		if r.discover != nil {
			r.discover.apply()
		}
	}
	return nil
}

func (r *Runner) Stop() {
	atomic.StoreInt32(&r.stopFlag, 1)
}

func (r *Runner) Dispose() error {
	var errs []error
	r.disposeOnce.Do(func() {
		if r.d != nil {
			Log.Infof("[%s] runner dispose. stat=%+v, delivered=%v", r.d.UniqueKey(), r.d.Stat(), r.delivered)
			if err := r.d.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		for _, w := range r.writers {
			if err := w.Dispose(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	if len(errs) == 0 {
		return nil
	}
	return nazaerrors.CombineErrors(errs...)
}

func (r *Runner) Stat() dmx.Stat {
	return r.d.Stat()
}

func (r *Runner) Delivered(pid uint16) int {
	return r.delivered[pid]
}

func (r *Runner) addSectionFilter(pid uint16, sfc *SectionFilterConfig) (dmx.FilterHandle, error) {
	filter, mask, mode, err := sfc.Bytes()
	if err != nil {
		return dmx.FilterHandle{}, err
	}
	return r.addSectionFilterWithCallback(pid, filter, mask, mode, r.onSection, sfc.ModOptions()...)
}

func (r *Runner) addSectionFilterWithCallback(pid uint16, filter, mask, mode [dmx.FilterSize]byte, onData dmx.OnData, modOptions ...dmx.ModSectionFilterOption) (dmx.FilterHandle, error) {
	h, err := r.d.AllocateFilter(onData)
	if err != nil {
		return h, err
	}
	if err = r.d.ConfigureSectionFilter(h, pid, filter, mask, mode, modOptions...); err != nil {
		_ = r.d.FreeFilter(h)
		return h, err
	}
	if err = r.d.Enable(h); err != nil {
		_ = r.d.FreeFilter(h)
		return h, err
	}
	return h, nil
}

func (r *Runner) addPesFilter(pid uint16, output dmx.PesOutput) (dmx.FilterHandle, error) {
	h, err := r.d.AllocateFilter(r.onPes)
	if err != nil {
		return h, err
	}
	if err = r.d.ConfigurePesFilter(h, pid, output); err != nil {
		_ = r.d.FreeFilter(h)
		return h, err
	}
	if err = r.d.Enable(h); err != nil {
		_ = r.d.FreeFilter(h)
		return h, err
	}
	return h, nil
}

func (r *Runner) onSection(h dmx.FilterHandle, pid uint16, b []byte) {
	r.onData(pid, "sec", b)
}

func (r *Runner) onPes(h dmx.FilterHandle, pid uint16, b []byte) {
	r.onData(pid, "pes", b)
}

func (r *Runner) onData(pid uint16, ext string, b []byte) {
	r.delivered[pid]++
	if r.delivered[pid] <= deliverLogMaxNumPerPid {
		Log.Debugf("[%s] recv %s. pid=%d, len=%d", r.d.UniqueKey(), ext, pid, len(b))
	}
	if r.config.OutDir == "" {
		return
	}

	filename := filepath.Join(r.config.OutDir, fmt.Sprintf("%d.%s", pid, ext))
	w, ok := r.writers[filename]
	if !ok {
		w = &mpegts.FileWriter{}
		if err := w.Create(filename); err != nil {
			// 不缓存，下次收到数据时重试
			if r.outDump.ShouldDump() {
				r.outDump.Outf("[%s] create out file failed. filename=%s, err=%+v", r.d.UniqueKey(), filename, err)
			}
			return
		}
		r.writers[filename] = w
	}
	if err := w.Write(b); err != nil {
		if r.outDump.ShouldDump() {
			r.outDump.Outf("[%s] write out file failed. filename=%s, err=%+v", r.d.UniqueKey(), filename, err)
		}
	}
}
