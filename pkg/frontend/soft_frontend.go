// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package frontend

import (
	"fmt"
	"sync"
	"time"

	"github.com/q191201771/tsdmx/pkg/base"
	"github.com/q191201771/tsdmx/pkg/dmx"
	"github.com/q191201771/tsdmx/pkg/mpegts"
)

// SoftFrontend 软件实现的tap设备
//
// 上游是完整的TS流（所有pid），只有被已启动的tap选中的pid的packet才会进入采集流。
// 同时实现了 dmx.TapDevice 以及 dmx.ByteSource，通过 Opener 交给 dmx.Open 使用。
type SoftFrontend struct {
	uniqueKey   string
	deviceIndex int
	upstream    dmx.ByteSource
	readBuf     []byte

	carry *base.Buffer
	out   *base.Buffer

	mu     sync.Mutex
	routed map[uint16]int

	droppedPackets uint64
}

func NewSoftFrontend(deviceIndex int, upstream dmx.ByteSource) *SoftFrontend {
	uk := base.GenUkSoftFrontend()
	Log.Infof("[%s] lifecycle new soft frontend. index=%d", uk, deviceIndex)
	return &SoftFrontend{
		uniqueKey:   uk,
		deviceIndex: deviceIndex,
		upstream:    upstream,
		readBuf:     make([]byte, base.DmxReadChunkSize),
		carry:       base.NewBuffer(base.DmxReadChunkSize),
		out:         base.NewBuffer(base.DmxReadChunkSize),
		routed:      make(map[uint16]int),
	}
}

// Opener 作为 dmx.Option.SourceOpener 使用
func (fe *SoftFrontend) Opener(deviceIndex int) (dmx.ByteSource, error) {
	if deviceIndex != fe.deviceIndex {
		return nil, fmt.Errorf("%w. index=%d", base.ErrNoSuchDevice, deviceIndex)
	}
	return fe, nil
}

func (fe *SoftFrontend) OpenTap(deviceIndex int) (dmx.Tap, error) {
	if deviceIndex != fe.deviceIndex {
		return nil, fmt.Errorf("%w. index=%d", base.ErrNoSuchDevice, deviceIndex)
	}
	return &SoftTap{fe: fe}, nil
}

// RoutedPids 当前被tap选中的pid，无序
func (fe *SoftFrontend) RoutedPids() []uint16 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	pids := make([]uint16, 0, len(fe.routed))
	for pid := range fe.routed {
		pids = append(pids, pid)
	}
	return pids
}

func (fe *SoftFrontend) Poll(timeout time.Duration) (bool, error) {
	if fe.out.Len() > 0 {
		return true, nil
	}
	readable, err := fe.upstream.Poll(timeout)
	if err != nil || !readable {
		return false, err
	}
	n, err := fe.upstream.Read(fe.readBuf)
	if err != nil {
		if err == base.ErrWouldBlock {
			return false, nil
		}
		return false, err
	}
	_, _ = fe.carry.Write(fe.readBuf[:n])
	fe.route()
	return fe.out.Len() > 0, nil
}

func (fe *SoftFrontend) Read(b []byte) (int, error) {
	if fe.out.Len() == 0 {
		return 0, base.ErrWouldBlock
	}
	n := copy(b, fe.out.Bytes())
	fe.out.Skip(n)
	return n, nil
}

func (fe *SoftFrontend) Close() error {
	Log.Infof("[%s] lifecycle dispose soft frontend. dropped=%d", fe.uniqueKey, fe.droppedPackets)
	return fe.upstream.Close()
}

// route 把carry中完整的packet按pid筛选到out中，和硬件一样不输出垃圾字节
func (fe *SoftFrontend) route() {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	for {
		packet, skipped, _ := mpegts.NextTsPacket(fe.carry.Bytes())
		fe.carry.Skip(skipped)
		if packet == nil {
			return
		}
		pid, _ := mpegts.PidOf(packet)
		if fe.routed[pid] > 0 {
			_, _ = fe.out.Write(packet)
		} else {
			fe.droppedPackets++
		}
		fe.carry.Skip(mpegts.PacketSize)
	}
}

func (fe *SoftFrontend) addRoute(pid uint16) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	fe.routed[pid]++
}

func (fe *SoftFrontend) delRoute(pid uint16) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	fe.routed[pid]--
	if fe.routed[pid] <= 0 {
		delete(fe.routed, pid)
	}
}

// ---------------------------------------------------------------------------------------------------------------------

// SoftTap SoftFrontend上的一个tap
type SoftTap struct {
	fe         *SoftFrontend
	params     dmx.TapParams
	programmed bool
	started    bool
}

func (t *SoftTap) SetPesFilter(params dmx.TapParams) error {
	if params.Pid >= mpegts.PidNull {
		return base.NewErrInvalidPid(params.Pid)
	}
	if params.Output != dmx.TapOutputTsTap {
		return fmt.Errorf("%w. output=%d", base.ErrTapNotProgrammed, params.Output)
	}
	if t.started {
		t.fe.delRoute(t.params.Pid)
		t.started = false
	}
	t.params = params
	t.programmed = true
	return nil
}

func (t *SoftTap) Start() error {
	if !t.programmed {
		return base.ErrTapNotProgrammed
	}
	if t.started {
		return nil
	}
	t.started = true
	t.fe.addRoute(t.params.Pid)
	return nil
}

func (t *SoftTap) Close() error {
	if t.started {
		t.fe.delRoute(t.params.Pid)
		t.started = false
	}
	t.programmed = false
	return nil
}
