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
	"testing"

	"github.com/q191201771/naza/pkg/assert"
	"github.com/q191201771/tsdmx/pkg/base"
)

func TestContinuityUpdate(t *testing.T) {
	var c continuity
	assert.Equal(t, true, c.update(7, true, false))
	assert.Equal(t, true, c.update(8, true, false))
	assert.Equal(t, true, c.update(8, false, false))
	assert.Equal(t, false, c.update(10, true, false))
	assert.Equal(t, true, c.update(11, true, false))
	assert.Equal(t, true, c.update(3, true, true))
	assert.Equal(t, true, c.update(4, true, false))

	for i := 5; i < 5+32; i++ {
		assert.Equal(t, true, c.update(uint8(i)&0x0F, true, false))
	}
	c.reset()
	assert.Equal(t, true, c.update(0, true, false))
}

func TestChannelTable(t *testing.T) {
	ct := NewChannelTable(2)
	ch1, err := ct.FindOrCreate(0x10, ChannelKindSection)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, ch1.RefCount())
	assert.Equal(t, SectionBufferSize, len(ch1.sa.buf))

	ch, err := ct.FindOrCreate(0x10, ChannelKindSection)
	assert.Equal(t, nil, err)
	assert.Equal(t, ch1, ch)
	assert.Equal(t, 2, ch1.RefCount())

	_, err = ct.FindOrCreate(0x10, ChannelKindPes)
	assert.Equal(t, true, errors.Is(err, base.ErrChannelKindConflict))

	ch2, err := ct.FindOrCreate(0x11, ChannelKindPes)
	assert.Equal(t, nil, err)
	assert.Equal(t, ChannelKindPes, ch2.Kind())
	_, err = ct.FindOrCreate(0x12, ChannelKindPes)
	assert.Equal(t, true, errors.Is(err, base.ErrNoFreeChannel))
	assert.Equal(t, []uint16{0x10, 0x11}, ct.ActivePids())

	assert.Equal(t, false, ct.Release(ch1))
	assert.Equal(t, true, ct.Release(ch1))
	assert.Equal(t, true, ct.Get(0x10) == nil)
	assert.Equal(t, 1, ct.Len())

	ch3, err := ct.FindOrCreate(0x10, ChannelKindPes)
	assert.Equal(t, nil, err)
	assert.Equal(t, true, ch3 != ch1)
	assert.Equal(t, false, ch3.cc.valid)
}

func TestSectionAssemblerFeed(t *testing.T) {
	var sa sectionAssembler
	sa.init()

	section := []byte{0x42, 0x00, 0x03, 1, 2, 3}
	n, complete, overflow := sa.feed(section[:2])
	assert.Equal(t, 2, n)
	assert.Equal(t, false, complete)
	assert.Equal(t, false, overflow)

	n, complete, _ = sa.feed(append(section[2:], 0xFF, 0xFF))
	assert.Equal(t, 4, n)
	assert.Equal(t, true, complete)
	assert.Equal(t, section, sa.buf[:sa.length])

	sa.reset()
	n, complete, _ = sa.feed([]byte{0x70, 0x00, 0x00, 0x70})
	assert.Equal(t, 3, n)
	assert.Equal(t, true, complete)

	sa.reset()
	_, complete, overflow = sa.feed([]byte{0x42, 0xBF, 0xFF, 0x00})
	assert.Equal(t, false, complete)
	assert.Equal(t, true, overflow)
}

func TestMatchSection(t *testing.T) {
	var f Filter
	var filter, mask, mode [FilterSize]byte
	filter[0], mask[0] = 0x40, 0xF0
	filter[5], mask[5], mode[5] = 0x01, 0x3E, 0x3E
	f.configureSection(0x10, filter, mask, mode, SectionFilterOption{})
	assert.Equal(t, true, f.hasNeg)

	section := make([]byte, 20)
	section[0] = 0x4E
	section[5] = 0x01
	assert.Equal(t, false, f.matchSection(section))
	section[5] = 0x03
	assert.Equal(t, true, f.matchSection(section))
	section[0] = 0x5E
	assert.Equal(t, false, f.matchSection(section))
}
