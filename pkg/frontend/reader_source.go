// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package frontend

import (
	"io"
	"sync"
	"time"

	"github.com/q191201771/tsdmx/pkg/base"
)

// ReaderSource 把阻塞的io.Reader（文件、stdin、网络连接等）适配成可poll的 dmx.ByteSource
//
// 内部有一个读协程，读到的数据块通过channel交给Poll/Read
type ReaderSource struct {
	r         io.Reader
	chunkSize int

	ch   chan []byte
	done chan struct{}

	pending []byte

	// 读协程退出的原因，在关闭ch之前写入
	err error

	closeOnce sync.Once
}

type ReaderSourceOption struct {
	ChunkSize int

	// QueueSize 读协程最多领先多少个数据块
	QueueSize int
}

var defaultReaderSourceOption = ReaderSourceOption{
	ChunkSize: base.DmxReadChunkSize,
	QueueSize: 8,
}

type ModReaderSourceOption func(option *ReaderSourceOption)

// NewReaderSource 如果`r`实现了io.Closer，Close时会关闭它
func NewReaderSource(r io.Reader, modOptions ...ModReaderSourceOption) *ReaderSource {
	option := defaultReaderSourceOption
	for _, fn := range modOptions {
		fn(&option)
	}
	s := &ReaderSource{
		r:         r,
		chunkSize: option.ChunkSize,
		ch:        make(chan []byte, option.QueueSize),
		done:      make(chan struct{}),
	}
	go s.runReadLoop()
	return s
}

func (s *ReaderSource) Poll(timeout time.Duration) (bool, error) {
	if len(s.pending) > 0 {
		return true, nil
	}

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case b, ok := <-s.ch:
		if !ok {
			return false, s.err
		}
		s.pending = b
		return true, nil
	case <-s.done:
		return false, base.ErrSourceClosed
	case <-t.C:
		return false, nil
	}
}

func (s *ReaderSource) Read(b []byte) (int, error) {
	if len(s.pending) == 0 {
		select {
		case p, ok := <-s.ch:
			if !ok {
				return 0, s.err
			}
			s.pending = p
		default:
			return 0, base.ErrWouldBlock
		}
	}
	n := copy(b, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

func (s *ReaderSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		if c, ok := s.r.(io.Closer); ok {
			err = c.Close()
		}
	})
	return err
}

func (s *ReaderSource) runReadLoop() {
	for {
		buf := make([]byte, s.chunkSize)
		n, err := s.r.Read(buf)
		if n > 0 {
			select {
			case s.ch <- buf[:n]:
			case <-s.done:
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				Log.Warnf("read loop done. err=%+v", err)
			}
			s.err = err
			close(s.ch)
			return
		}
	}
}
