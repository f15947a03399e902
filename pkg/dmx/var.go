// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

// Package dmx 软件TS解复用：按PID分发，section重组与过滤，PES转发，以及硬件tap的重建
//
// 使用流程:
//   d, _ := dmx.Open(0, func(option *dmx.Option) { option.SourceOpener = ...; option.TapDevice = ... })
//   h, _ := d.AllocateFilter(onData)
//   _ = d.ConfigureSectionFilter(h, pid, filter, mask, mode)
//   _ = d.Enable(h)
//   for { _ = d.PollOnce(timeout) }
//
package dmx

import (
	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/tsdmx/pkg/mpegts"
)

var Log = nazalog.GetGlobalLogger()

const (
	// ChannelCapacity 同时处于活跃状态的channel的最大数量
	ChannelCapacity = 32

	// FilterCapacity 同时分配的filter的最大数量
	FilterCapacity = 32

	// FilterSize section filter参与比较的字节数
	FilterSize = 16

	// SectionBufferSize section重组buffer的大小
	SectionBufferSize = mpegts.SectionMaxSize
)
