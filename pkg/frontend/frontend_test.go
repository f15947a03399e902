// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package frontend_test

import (
	"bytes"
	"io"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/q191201771/naza/pkg/assert"
	"github.com/q191201771/tsdmx/pkg/base"
	"github.com/q191201771/tsdmx/pkg/dmx"
	"github.com/q191201771/tsdmx/pkg/frontend"
	"github.com/q191201771/tsdmx/pkg/mpegts"
)

// makeStream 两路pes交错，每路`n`个packet
func makeStream(n int) []byte {
	var out []byte
	for i := 0; i < n; i++ {
		out = append(out, mpegts.PackTsPacket(0x100, uint8(i), i == 0, []byte{0x01, uint8(i)})...)
		out = append(out, mpegts.PackTsPacket(0x200, uint8(i), i == 0, []byte{0x02, uint8(i)})...)
	}
	return out
}

func drain(t *testing.T, src dmx.ByteSource) ([]byte, error) {
	var out []byte
	buf := make([]byte, 1000)
	for i := 0; i < 10000; i++ {
		readable, err := src.Poll(100 * time.Millisecond)
		if err != nil {
			return out, err
		}
		if !readable {
			continue
		}
		n, err := src.Read(buf)
		if err == base.ErrWouldBlock {
			continue
		}
		assert.Equal(t, nil, err)
		out = append(out, buf[:n]...)
	}
	return out, nil
}

func TestReaderSource(t *testing.T) {
	stream := makeStream(50)
	src := frontend.NewReaderSource(bytes.NewReader(stream), func(option *frontend.ReaderSourceOption) {
		option.ChunkSize = 777
	})
	got, err := drain(t, src)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, stream, got)
	assert.Equal(t, nil, src.Close())
	assert.Equal(t, nil, src.Close())
}

func TestReaderSource_Close(t *testing.T) {
	r, w := io.Pipe()
	src := frontend.NewReaderSource(r)

	readable, err := src.Poll(10 * time.Millisecond)
	assert.Equal(t, false, readable)
	assert.Equal(t, nil, err)
	_, err = src.Read(make([]byte, 10))
	assert.Equal(t, base.ErrWouldBlock, err)

	go func() {
		_, _ = w.Write([]byte{1, 2, 3})
	}()
	readable, err = src.Poll(time.Second)
	assert.Equal(t, true, readable)
	assert.Equal(t, nil, err)
	b := make([]byte, 2)
	n, _ := src.Read(b)
	assert.Equal(t, 2, n)
	n, _ = src.Read(b)
	assert.Equal(t, 1, n)

	assert.Equal(t, nil, src.Close())
	_, err = src.Poll(time.Second)
	assert.IsNotNil(t, err)
}

func TestSoftFrontend(t *testing.T) {
	stream := makeStream(40)
	fe := frontend.NewSoftFrontend(0, frontend.NewReaderSource(bytes.NewReader(stream)))

	d, err := dmx.Open(0, func(option *dmx.Option) {
		option.SourceOpener = fe.Opener
		option.TapDevice = fe
	})
	assert.Equal(t, nil, err)

	var got [][]byte
	h, _ := d.AllocateFilter(func(h dmx.FilterHandle, pid uint16, b []byte) {
		assert.Equal(t, uint16(0x200), pid)
		got = append(got, append([]byte(nil), b[:2]...))
	})
	assert.Equal(t, nil, d.ConfigurePesFilter(h, 0x200, dmx.PesOutputTap))
	assert.Equal(t, nil, d.Enable(h))
	assert.Equal(t, []uint16{0x200}, fe.RoutedPids())

	for i := 0; i < 10000; i++ {
		if err = d.PollOnce(100 * time.Millisecond); err != nil {
			break
		}
	}
	assert.Equal(t, io.EOF, err)

	assert.Equal(t, 40, len(got))
	for i := range got {
		assert.Equal(t, []byte{0x02, uint8(i)}, got[i])
	}
	// 没有被tap选中的pid不会进入采集流
	stat := d.Stat()
	assert.Equal(t, uint64(40), stat.Packets)
	assert.Equal(t, uint64(0), stat.ContinuityErrors)

	assert.Equal(t, nil, d.Disable(h))
	assert.Equal(t, 0, len(fe.RoutedPids()))
	assert.Equal(t, nil, d.Close())
}

func TestSoftTap(t *testing.T) {
	fe := frontend.NewSoftFrontend(3, frontend.NewReaderSource(bytes.NewReader(nil)))
	defer fe.Close()

	_, err := fe.OpenTap(0)
	assert.IsNotNil(t, err)
	_, err = fe.Opener(1)
	assert.IsNotNil(t, err)

	tap, err := fe.OpenTap(3)
	assert.Equal(t, nil, err)
	assert.Equal(t, base.ErrTapNotProgrammed, tap.Start())
	assert.IsNotNil(t, tap.SetPesFilter(dmx.TapParams{Pid: mpegts.PidNull, Output: dmx.TapOutputTsTap}))
	assert.IsNotNil(t, tap.SetPesFilter(dmx.TapParams{Pid: 0x10, Output: dmx.TapOutputDecoder}))

	assert.Equal(t, nil, tap.SetPesFilter(dmx.TapParams{Pid: 0x10, Output: dmx.TapOutputTsTap}))
	assert.Equal(t, nil, tap.Start())
	tap2, _ := fe.OpenTap(3)
	assert.Equal(t, nil, tap2.SetPesFilter(dmx.TapParams{Pid: 0x11, Output: dmx.TapOutputTsTap}))
	assert.Equal(t, nil, tap2.Start())

	pids := fe.RoutedPids()
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	assert.Equal(t, []uint16{0x10, 0x11}, pids)

	assert.Equal(t, nil, tap.Close())
	assert.Equal(t, []uint16{0x11}, fe.RoutedPids())
	assert.Equal(t, nil, tap2.Close())
	assert.Equal(t, 0, len(fe.RoutedPids()))
}

func TestDumpFileSource(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "replay.tsdmxdump")
	stream := append([]byte{0x00, 0x47}, makeStream(10)...)

	df := base.NewDumpFile()
	assert.Equal(t, nil, df.OpenToWrite(filename))
	for i := 0; i < len(stream); i += 500 {
		end := i + 500
		if end > len(stream) {
			end = len(stream)
		}
		assert.Equal(t, nil, df.Write(stream[i:end]))
	}
	assert.Equal(t, nil, df.Close())

	src, err := frontend.OpenDumpFileSource(filename)
	assert.Equal(t, nil, err)
	got, err := drain(t, src)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, stream, got)
	assert.Equal(t, nil, src.Close())
}
