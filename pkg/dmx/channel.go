// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package dmx

import (
	"sort"

	"github.com/q191201771/tsdmx/pkg/base"
)

type ChannelKind uint8

const (
	ChannelKindSection ChannelKind = iota + 1
	ChannelKindPes
)

func (k ChannelKind) String() string {
	switch k {
	case ChannelKindSection:
		return "section"
	case ChannelKindPes:
		return "pes"
	}
	return "unknown"
}

// Channel 一个活跃PID的解复用状态
//
// 由ChannelTable创建和回收，被启用的filter引用，引用计数归零后从表中移除
type Channel struct {
	pid      uint16
	kind     ChannelKind
	refCount int

	// 按enable的先后顺序
	filters []*Filter

	cc continuity
	sa sectionAssembler
}

func (ch *Channel) Pid() uint16 {
	return ch.pid
}

func (ch *Channel) Kind() ChannelKind {
	return ch.kind
}

func (ch *Channel) RefCount() int {
	return ch.refCount
}

func (ch *Channel) bind(f *Filter) {
	ch.filters = append(ch.filters, f)
}

// unbind
//
// @return f在filters中原来的位置，不存在时为-1
func (ch *Channel) unbind(f *Filter) int {
	for i := range ch.filters {
		if ch.filters[i] == f {
			ch.filters = append(ch.filters[:i], ch.filters[i+1:]...)
			return i
		}
	}
	return -1
}

// moveTo 把已绑定的f挪到位置i，用于恢复filter的匹配顺序
func (ch *Channel) moveTo(f *Filter, i int) {
	cur := ch.unbind(f)
	if cur < 0 {
		return
	}
	if i < 0 || i > len(ch.filters) {
		i = len(ch.filters)
	}
	ch.filters = append(ch.filters, nil)
	copy(ch.filters[i+1:], ch.filters[i:])
	ch.filters[i] = f
}

// ---------------------------------------------------------------------------------------------------------------------

// continuity continuity_counter跟踪
type continuity struct {
	valid bool
	last  uint8
}

// update
//
// 第一个packet只做记录不做检查。有payload时期望值为上一个值加1（模16），否则期望值不变。
// adaptation field中discontinuity_indicator置位时重新记录，不算错误。
// 不匹配时也记录新值，这样一次跳变只会报告一次。
//
// @return 是否连续
func (c *continuity) update(cc uint8, hasPayload bool, discontinuity bool) bool {
	if !c.valid || discontinuity {
		c.valid = true
		c.last = cc
		return true
	}
	expected := c.last
	if hasPayload {
		expected = (c.last + 1) & 0x0F
	}
	c.last = cc
	return cc == expected
}

func (c *continuity) reset() {
	c.valid = false
	c.last = 0
}

// ---------------------------------------------------------------------------------------------------------------------

// ChannelTable 活跃channel表，以pid为key，每个pid最多一个活跃channel
type ChannelTable struct {
	capacity int
	channels map[uint16]*Channel
}

func NewChannelTable(capacity int) *ChannelTable {
	return &ChannelTable{
		capacity: capacity,
		channels: make(map[uint16]*Channel),
	}
}

// FindOrCreate 查找pid对应的活跃channel并增加引用计数，不存在则新建
//
// 新建的channel总是干净的状态：重组长度为0，continuity未设置
func (ct *ChannelTable) FindOrCreate(pid uint16, kind ChannelKind) (*Channel, error) {
	if ch, ok := ct.channels[pid]; ok {
		if ch.kind != kind {
			return nil, base.NewErrChannelKindConflict(pid, ch.kind, kind)
		}
		ch.refCount++
		return ch, nil
	}

	if len(ct.channels) >= ct.capacity {
		return nil, base.NewErrNoFreeChannel(pid, ct.capacity)
	}
	ch := &Channel{
		pid:      pid,
		kind:     kind,
		refCount: 1,
	}
	if kind == ChannelKindSection {
		ch.sa.init()
	}
	ct.channels[pid] = ch
	return ch, nil
}

// Release 减少引用计数，归零时从表中移除
//
// @return 是否已移除
func (ct *ChannelTable) Release(ch *Channel) bool {
	ch.refCount--
	if ch.refCount > 0 {
		return false
	}
	if cur, ok := ct.channels[ch.pid]; ok && cur == ch {
		delete(ct.channels, ch.pid)
	}
	ch.filters = nil
	return true
}

// Get 不存在时返回nil
func (ct *ChannelTable) Get(pid uint16) *Channel {
	return ct.channels[pid]
}

func (ct *ChannelTable) Len() int {
	return len(ct.channels)
}

// ActivePids 从小到大排序
func (ct *ChannelTable) ActivePids() []uint16 {
	pids := make([]uint16, 0, len(ct.channels))
	for pid := range ct.channels {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool {
		return pids[i] < pids[j]
	})
	return pids
}
