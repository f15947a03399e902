// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/q191201771/naza/pkg/bele"
	"github.com/q191201771/naza/pkg/nazabytes"
)

// DumpFile 采集流录制文件
//
// 每次从采集流读到的原始数据块作为一条消息写入，回放时按块读出，可以逐字节复现一次采集时的
// read边界（包括残包、垃圾字节等），用于复现解复用问题。
//
// 消息格式，均为大端:
//   Ver       [4 bytes]
//   Typ       [4 bytes]
//   Len       [4 bytes]
//   Timestamp [4 bytes] unix seconds
//   Body      [Len bytes]
//
type DumpFile struct {
	file *os.File
}

const (
	DumpFileVer = 1

	DumpTypeTsCapture = 1
)

type DumpFileMessage struct {
	Ver       uint32
	Typ       uint32
	Len       uint32
	Timestamp uint32
	Body      []byte
}

func NewDumpFile() *DumpFile {
	return &DumpFile{}
}

func (d *DumpFile) OpenToWrite(filename string) (err error) {
	dir := filepath.Dir(filename)
	if err = os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	d.file, err = os.Create(filename)
	return
}

func (d *DumpFile) OpenToRead(filename string) (err error) {
	d.file, err = os.Open(filename)
	return
}

func (d *DumpFile) Write(b []byte) error {
	_, err := d.file.Write(d.pack(b, DumpTypeTsCapture))
	return err
}

// ReadOneMessage 读取一条消息，文件读完时返回 io.EOF
func (d *DumpFile) ReadOneMessage() (m DumpFileMessage, err error) {
	m.Ver, err = bele.ReadBeUint32(d.file)
	if err != nil {
		return
	}
	m.Typ, err = bele.ReadBeUint32(d.file)
	if err != nil {
		return
	}
	m.Len, err = bele.ReadBeUint32(d.file)
	if err != nil {
		return
	}
	m.Timestamp, err = bele.ReadBeUint32(d.file)
	if err != nil {
		return
	}
	m.Body = make([]byte, m.Len)
	if _, err = io.ReadFull(d.file, m.Body); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return
	}
	if m.Ver != DumpFileVer {
		err = fmt.Errorf("%w. unknown dump file version=%d", ErrShortBuffer, m.Ver)
	}
	return
}

func (d *DumpFile) Close() error {
	if d.file == nil {
		return nil
	}
	return d.file.Close()
}

func (m *DumpFileMessage) DebugString() string {
	return fmt.Sprintf("ver: %d, typ: %d, len: %d, timestamp: %d, hex: %s",
		m.Ver, m.Typ, m.Len, m.Timestamp, hex.Dump(nazabytes.Prefix(m.Body, 16)))
}

func (d *DumpFile) pack(b []byte, typ uint32) []byte {
	ret := make([]byte, len(b)+16)
	bele.BePutUint32(ret, DumpFileVer)
	bele.BePutUint32(ret[4:], typ)
	bele.BePutUint32(ret[8:], uint32(len(b)))
	bele.BePutUint32(ret[12:], uint32(time.Now().Unix()))
	copy(ret[16:], b)
	return ret
}
