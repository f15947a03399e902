// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package dmx

import (
	"fmt"

	"github.com/q191201771/tsdmx/pkg/base"
	"github.com/q191201771/tsdmx/pkg/mpegts"
)

// OnData 数据回调
//
// section filter每次回调一个完整的section，pes filter每次回调一个TS packet的payload。
// 注意，`b`只在回调期间有效，业务方如需持有请自行拷贝。
// 回调在 DemuxInstance 的锁内执行，回调中不要再调用 DemuxInstance 的方法。
type OnData func(h FilterHandle, pid uint16, b []byte)

// FilterHandle 从 AllocateFilter 到 FreeFilter 之间有效
//
// 带有代数，slot被复用后旧的handle也不会被接受。零值是无效handle
type FilterHandle struct {
	index int
	gen   uint32
}

func (h FilterHandle) IsValid() bool {
	return h.gen != 0
}

func (h FilterHandle) String() string {
	return fmt.Sprintf("%d.%d", h.index, h.gen)
}

type PesOutput uint8

const (
	// PesOutputTap 每个packet的payload回调给业务方
	PesOutputTap PesOutput = iota

	// PesOutputPass 只把pid路由进采集流（录制文件中可见），不回调
	PesOutputPass
)

func (o PesOutput) String() string {
	switch o {
	case PesOutputTap:
		return "tap"
	case PesOutputPass:
		return "pass"
	}
	return "unknown"
}

type SectionFilterOption struct {
	// CheckCrc section_syntax_indicator为1的section做CRC32校验，校验失败的不匹配
	CheckCrc bool

	// OneShot 第一次回调之后filter自动disable
	OneShot bool
}

type ModSectionFilterOption func(option *SectionFilterOption)

func SectionFilterOptCheckCrc(option *SectionFilterOption) {
	option.CheckCrc = true
}

func SectionFilterOptOneShot(option *SectionFilterOption) {
	option.OneShot = true
}

// ---------------------------------------------------------------------------------------------------------------------

// filterConfig Configure 写入的部分，重新配置失败时整体恢复
type filterConfig struct {
	// 为0表示还没有configure
	kind ChannelKind
	pid  uint16

	match    [FilterSize]byte
	positive [FilterSize]byte
	negative [FilterSize]byte
	hasNeg   bool
	option   SectionFilterOption

	pesOutput PesOutput
}

type Filter struct {
	handle FilterHandle
	onData OnData

	filterConfig

	bufferSize int

	enabled bool
	channel *Channel

	// one-shot filter已经回调过，等待本轮poll结束后disable
	fired bool
}

func (f *Filter) Handle() FilterHandle {
	return f.handle
}

func (f *Filter) IsEnabled() bool {
	return f.enabled
}

func (f *Filter) configureSection(pid uint16, filter, mask, mode [FilterSize]byte, option SectionFilterOption) {
	f.kind = ChannelKindSection
	f.pid = pid
	f.option = option
	f.hasNeg = false
	for i := 0; i < FilterSize; i++ {
		f.match[i] = filter[i]
		f.positive[i] = mask[i] &^ mode[i]
		f.negative[i] = mask[i] & mode[i]
		if f.negative[i] != 0 {
			f.hasNeg = true
		}
	}
}

func (f *Filter) configurePes(pid uint16, output PesOutput) {
	f.kind = ChannelKindPes
	f.pid = pid
	f.pesOutput = output
	f.option = SectionFilterOption{}
}

// matchSection
//
// 所有positive位必须相等；如果设置了negative位，至少有一个negative位不相等。
// 超出section长度的位置：positive位视为不相等，negative位忽略。
func (f *Filter) matchSection(section []byte) bool {
	negDiffer := false
	for i := 0; i < FilterSize; i++ {
		if i >= len(section) {
			if f.positive[i] != 0 {
				return false
			}
			continue
		}
		diff := section[i] ^ f.match[i]
		if diff&f.positive[i] != 0 {
			return false
		}
		if diff&f.negative[i] != 0 {
			negDiffer = true
		}
	}
	if f.hasNeg && !negDiffer {
		return false
	}

	if f.option.CheckCrc && len(section) > 1 && section[1]&0x80 != 0 {
		if !mpegts.CheckSectionCrc32(section) {
			Log.Warnf("section crc mismatch. filter=%s, pid=%d, len=%d", f.handle, f.pid, len(section))
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------------------------------------------------

type filterSlot struct {
	gen    uint32
	filter *Filter
}

// FilterTable filter的slot表，只负责handle的分配、校验和回收
type FilterTable struct {
	slots []filterSlot
	used  int
}

func NewFilterTable(capacity int) *FilterTable {
	return &FilterTable{
		slots: make([]filterSlot, capacity),
	}
}

func (ft *FilterTable) Allocate(onData OnData) (*Filter, error) {
	for i := range ft.slots {
		slot := &ft.slots[i]
		if slot.filter != nil {
			continue
		}
		slot.gen++
		slot.filter = &Filter{
			handle: FilterHandle{index: i, gen: slot.gen},
			onData: onData,
		}
		ft.used++
		return slot.filter, nil
	}
	return nil, base.ErrNoFreeFilter
}

func (ft *FilterTable) Get(h FilterHandle) (*Filter, error) {
	if h.index < 0 || h.index >= len(ft.slots) {
		return nil, fmt.Errorf("%w. handle=%s", base.ErrInvalidFilter, h)
	}
	slot := &ft.slots[h.index]
	if slot.filter == nil || slot.gen != h.gen {
		return nil, fmt.Errorf("%w. handle=%s", base.ErrInvalidFilter, h)
	}
	return slot.filter, nil
}

// Free 调用方负责先disable
func (ft *FilterTable) Free(f *Filter) {
	slot := &ft.slots[f.handle.index]
	if slot.filter != f {
		return
	}
	slot.filter = nil
	ft.used--
}

// Len 已分配的数量
func (ft *FilterTable) Len() int {
	return ft.used
}

// Iterate 遍历所有已分配的filter
func (ft *FilterTable) Iterate(fn func(f *Filter)) {
	for i := range ft.slots {
		if ft.slots[i].filter != nil {
			fn(ft.slots[i].filter)
		}
	}
}
