// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package frontend

import (
	"time"

	"github.com/q191201771/tsdmx/pkg/base"
)

// DumpFileSource 回放 base.DumpFile 录制的采集流，保持录制时每次read的边界
type DumpFileSource struct {
	df      *base.DumpFile
	pending []byte
	err     error
}

func OpenDumpFileSource(filename string) (*DumpFileSource, error) {
	df := base.NewDumpFile()
	if err := df.OpenToRead(filename); err != nil {
		return nil, err
	}
	return &DumpFileSource{df: df}, nil
}

// Poll 文件总是可读的，读完后返回io.EOF
func (s *DumpFileSource) Poll(timeout time.Duration) (bool, error) {
	if len(s.pending) > 0 {
		return true, nil
	}
	if s.err != nil {
		return false, s.err
	}
	for {
		m, err := s.df.ReadOneMessage()
		if err != nil {
			s.err = err
			return false, err
		}
		if m.Typ != base.DumpTypeTsCapture || len(m.Body) == 0 {
			continue
		}
		s.pending = m.Body
		return true, nil
	}
}

func (s *DumpFileSource) Read(b []byte) (int, error) {
	if len(s.pending) == 0 {
		return 0, base.ErrWouldBlock
	}
	n := copy(b, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

func (s *DumpFileSource) Close() error {
	return s.df.Close()
}
