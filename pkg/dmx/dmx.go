// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package dmx

import (
	"sync"

	"github.com/q191201771/naza/pkg/nazaerrors"
	"github.com/q191201771/tsdmx/pkg/base"
	"github.com/q191201771/tsdmx/pkg/mpegts"
)

type Option struct {
	// SourceOpener 必须设置
	SourceOpener SourceOpener

	// TapDevice 为nil时不打开tap，适用于采集流已包含全部pid的场景，比如回放录制文件
	TapDevice TapDevice

	ChannelCapacity int
	FilterCapacity  int

	// ReadChunkSize 每次从采集流读取的最大字节数
	ReadChunkSize int

	// RecordFilename 不为空时，把读到的原始数据录制到该文件，格式见 base.DumpFile
	RecordFilename string
}

var defaultOption = Option{
	ChannelCapacity: ChannelCapacity,
	FilterCapacity:  FilterCapacity,
	ReadChunkSize:   base.DmxReadChunkSize,
}

type ModOption func(option *Option)

// DemuxInstance 一个设备索引上的解复用实例
//
// 控制类方法可在多个协程中并发调用，PollOnce 由一个协程驱动。
// 数据回调在 PollOnce 内部、持有实例锁的情况下同步执行。
type DemuxInstance struct {
	uniqueKey   string
	deviceIndex int
	option      Option

	readMu sync.Mutex
	carry  *base.Buffer

	mu             sync.Mutex
	closed         bool
	src            ByteSource
	dump           *base.DumpFile
	channels       *ChannelTable
	filters        *FilterTable
	taps           *TapReconciler
	lastTapReport  TapReport
	pendingOneShot []*Filter
	stat           Stat
	anomalyDump    base.LogDump
}

// Open 打开设备索引对应的采集流
func Open(deviceIndex int, modOptions ...ModOption) (*DemuxInstance, error) {
	option := defaultOption
	for _, fn := range modOptions {
		fn(&option)
	}
	if option.SourceOpener == nil {
		return nil, base.NewErrDeviceOpenFailed(deviceIndex, base.ErrNoSuchDevice)
	}
	if option.ReadChunkSize < mpegts.PacketSize {
		option.ReadChunkSize = mpegts.PacketSize
	}

	src, err := option.SourceOpener(deviceIndex)
	if err != nil {
		return nil, base.NewErrDeviceOpenFailed(deviceIndex, err)
	}

	var dump *base.DumpFile
	if option.RecordFilename != "" {
		dump = base.NewDumpFile()
		if err = dump.OpenToWrite(option.RecordFilename); err != nil {
			_ = src.Close()
			return nil, base.NewErrDeviceOpenFailed(deviceIndex, err)
		}
	}

	uk := base.GenUkDmx()
	d := &DemuxInstance{
		uniqueKey:   uk,
		deviceIndex: deviceIndex,
		option:      option,
		carry:       base.NewBuffer(option.ReadChunkSize + mpegts.PacketSize),
		src:         src,
		dump:        dump,
		channels:    NewChannelTable(option.ChannelCapacity),
		filters:     NewFilterTable(option.FilterCapacity),
		taps:        NewTapReconciler(uk, option.TapDevice, deviceIndex),
		anomalyDump: base.NewLogDump(Log, base.DmxLogDumpDebugMaxNum),
	}
	Log.Infof("[%s] lifecycle new dmx. index=%d, record=%s", uk, deviceIndex, option.RecordFilename)
	return d, nil
}

// Close 关闭所有tap、采集流以及录制文件。之后所有方法返回 base.ErrDmxClosed
func (d *DemuxInstance) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	var errs []error
	d.filters.Iterate(func(f *Filter) {
		if f.enabled {
			d.disableLocked(f)
		}
	})
	if err := d.taps.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := d.src.Close(); err != nil {
		errs = append(errs, err)
	}
	if d.dump != nil {
		if err := d.dump.Close(); err != nil {
			errs = append(errs, err)
		}
		d.dump = nil
	}

	Log.Infof("[%s] lifecycle dispose dmx. stat=%+v, suppressed=%d", d.uniqueKey, d.stat, d.anomalyDump.Suppressed())
	if len(errs) == 0 {
		return nil
	}
	return nazaerrors.Wrap(nazaerrors.CombineErrors(errs...))
}

func (d *DemuxInstance) AllocateFilter(onData OnData) (FilterHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return FilterHandle{}, base.ErrDmxClosed
	}
	f, err := d.filters.Allocate(onData)
	if err != nil {
		return FilterHandle{}, err
	}
	Log.Debugf("[%s] allocate filter. handle=%s", d.uniqueKey, f.handle)
	return f.handle, nil
}

// FreeFilter 隐含 Disable
func (d *DemuxInstance) FreeFilter(h FilterHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, err := d.getFilterLocked(h)
	if err != nil {
		return err
	}
	if f.enabled {
		d.disableLocked(f)
		d.rebuildLocked()
	}
	d.filters.Free(f)
	Log.Debugf("[%s] free filter. handle=%s", d.uniqueKey, h)
	return nil
}

// ConfigureSectionFilter
//
// 比较section的前16个字节。mask中为1的位参与比较；mode中为1的位是negative位（要求不相等），为0的是positive位（要求相等）。
// 已启用的filter会先disable再enable，以新的配置重新绑定。
func (d *DemuxInstance) ConfigureSectionFilter(h FilterHandle, pid uint16, filter, mask, mode [FilterSize]byte, modOptions ...ModSectionFilterOption) error {
	if err := checkPid(pid); err != nil {
		return err
	}
	var option SectionFilterOption
	for _, fn := range modOptions {
		fn(&option)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	f, err := d.getFilterLocked(h)
	if err != nil {
		return err
	}
	return d.reconfigureLocked(f, func() {
		f.configureSection(pid, filter, mask, mode, option)
	})
}

func (d *DemuxInstance) ConfigurePesFilter(h FilterHandle, pid uint16, output PesOutput) error {
	if err := checkPid(pid); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	f, err := d.getFilterLocked(h)
	if err != nil {
		return err
	}
	return d.reconfigureLocked(f, func() {
		f.configurePes(pid, output)
	})
}

// Enable 重复调用无副作用
func (d *DemuxInstance) Enable(h FilterHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, err := d.getFilterLocked(h)
	if err != nil {
		return err
	}
	if f.enabled {
		return nil
	}
	if err = d.enableLocked(f); err != nil {
		return err
	}
	d.rebuildLocked()
	return nil
}

// Disable 重复调用无副作用
func (d *DemuxInstance) Disable(h FilterHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, err := d.getFilterLocked(h)
	if err != nil {
		return err
	}
	if !f.enabled {
		return nil
	}
	d.disableLocked(f)
	d.rebuildLocked()
	return nil
}

// SetBufferSize 只做handle校验，buffer大小是固定的
func (d *DemuxInstance) SetBufferSize(h FilterHandle, n int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, err := d.getFilterLocked(h)
	if err != nil {
		return err
	}
	f.bufferSize = n
	return nil
}

func (d *DemuxInstance) Stat() Stat {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stat
}

// LastTapReport 最近一次tap重建的结果
func (d *DemuxInstance) LastTapReport() TapReport {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastTapReport
}

// ActivePids 当前活跃channel的pid
func (d *DemuxInstance) ActivePids() []uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.channels.ActivePids()
}

func (d *DemuxInstance) UniqueKey() string {
	return d.uniqueKey
}

// ---------------------------------------------------------------------------------------------------------------------

func (d *DemuxInstance) getFilterLocked(h FilterHandle) (*Filter, error) {
	if d.closed {
		return nil, base.ErrDmxClosed
	}
	return d.filters.Get(h)
}

// reconfigureLocked 已启用的filter以新配置重新绑定。失败时恢复原配置和原绑定（包括在channel中的匹配顺序）
func (d *DemuxInstance) reconfigureLocked(f *Filter, apply func()) error {
	if !f.enabled {
		apply()
		return nil
	}

	oldCh := f.channel
	saved := f.filterConfig
	pos := d.disableLocked(f)
	apply()
	err := d.enableLocked(f)
	if err != nil {
		f.filterConfig = saved
		if errRestore := d.enableLocked(f); errRestore != nil {
			Log.Errorf("[%s] restore filter failed. handle=%s, pid=%d, err=%+v", d.uniqueKey, f.handle, f.pid, errRestore)
		} else if f.channel == oldCh {
			oldCh.moveTo(f, pos)
		}
	}
	d.rebuildLocked()
	return err
}

func (d *DemuxInstance) enableLocked(f *Filter) error {
	if f.kind == 0 {
		return base.ErrFilterNotConfigured
	}
	ch, err := d.channels.FindOrCreate(f.pid, f.kind)
	if err != nil {
		Log.Warnf("[%s] enable filter failed. handle=%s, pid=%d, err=%+v", d.uniqueKey, f.handle, f.pid, err)
		return err
	}
	if ch.kind == ChannelKindPes && ch.refCount > 1 {
		d.channels.Release(ch)
		return base.ErrPesChannelBusy
	}
	ch.bind(f)
	f.channel = ch
	f.enabled = true
	f.fired = false
	Log.Debugf("[%s] enable filter. handle=%s, pid=%d, kind=%s, ref=%d", d.uniqueKey, f.handle, f.pid, f.kind, ch.refCount)
	return nil
}

// disableLocked
//
// @return f在channel中原来的匹配顺序
func (d *DemuxInstance) disableLocked(f *Filter) int {
	ch := f.channel
	pos := ch.unbind(f)
	released := d.channels.Release(ch)
	f.channel = nil
	f.enabled = false
	Log.Debugf("[%s] disable filter. handle=%s, pid=%d, released=%v", d.uniqueKey, f.handle, f.pid, released)
	return pos
}

func (d *DemuxInstance) rebuildLocked() {
	d.lastTapReport = d.taps.Rebuild(d.channels.ActivePids())
	if err := d.lastTapReport.Err(); err != nil {
		Log.Warnf("[%s] tap rebuild partially failed. err=%+v", d.uniqueKey, err)
	}
}

func checkPid(pid uint16) error {
	if pid >= mpegts.PidNull {
		return base.NewErrInvalidPid(pid)
	}
	return nil
}
