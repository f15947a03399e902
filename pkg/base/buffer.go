// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

import (
	"fmt"
)

// Buffer 先进先出的流式buffer，用于保存采集流中跨越两次read的残余字节
//
// 使用方式
//   buf := b.ReserveBytes(n) // 保证尾部至少有n字节可写
//   nn, _ := r.Read(buf)
//   b.Flush(nn)              // 更新写入位置
//   data := b.Bytes()        // 所有未消费数据，不拷贝
//   ...
//   b.Skip(consumed)         // 标记为已消费
//
type Buffer struct {
	core []byte
	rpos int
	wpos int
}

func NewBuffer(initCap int) *Buffer {
	return &Buffer{
		core: make([]byte, initCap),
	}
}

// Bytes 所有未消费数据，不拷贝
func (b *Buffer) Bytes() []byte {
	if b.rpos == b.wpos {
		return nil
	}
	return b.core[b.rpos:b.wpos]
}

// Skip 将前`n`字节未消费数据标记为已消费
func (b *Buffer) Skip(n int) {
	if n > b.wpos-b.rpos {
		Log.Warnf("[%p] Buffer::Skip too large. n=%d, %s", b, n, b.DebugString())
		b.Reset()
		return
	}
	b.rpos += n
	b.resetIfEmpty()
}

// Grow 确保尾部至少有`n`字节可写
//
// 头部有已消费的空闲空间时，优先把未消费数据挪到头部，残余数据总是不超过一个packet，拷贝开销很小
func (b *Buffer) Grow(n int) {
	tail := len(b.core) - b.wpos
	if tail >= n {
		return
	}

	if b.rpos+tail >= n {
		copy(b.core, b.core[b.rpos:b.wpos])
		b.wpos -= b.rpos
		b.rpos = 0
		return
	}

	needed := roundUpPowerOfTwo(b.Len() + n)
	Log.Debugf("[%p] Buffer::Grow. realloc, n=%d, copy=%d, cap=(%d, %d)", b, n, b.Len(), b.Cap(), needed)
	core := make([]byte, needed)
	l := copy(core, b.core[b.rpos:b.wpos])
	b.core = core
	b.rpos = 0
	b.wpos = l
}

// WritableBytes 当前尾部可写入的字节切片
func (b *Buffer) WritableBytes() []byte {
	if len(b.core) == b.wpos {
		return nil
	}
	return b.core[b.wpos:]
}

// ReserveBytes 返回大小恰好为`n`的可写切片，空间不够时内部会扩容
func (b *Buffer) ReserveBytes(n int) []byte {
	b.Grow(n)
	return b.WritableBytes()[:n]
}

// Flush 写入完成，更新写入位置
func (b *Buffer) Flush(n int) {
	if len(b.core)-b.wpos < n {
		Log.Warnf("[%p] Buffer::Flush too large. n=%d, %s", b, n, b.DebugString())
		b.wpos = len(b.core)
		return
	}
	b.wpos += n
}

// Write 拷贝
func (b *Buffer) Write(p []byte) (n int, err error) {
	b.Grow(len(p))
	n = copy(b.core[b.wpos:], p)
	b.wpos += n
	return n, nil
}

// Reset 重置，不释放内存块
func (b *Buffer) Reset() {
	b.rpos = 0
	b.wpos = 0
}

// Len 未消费数据的长度
func (b *Buffer) Len() int {
	return b.wpos - b.rpos
}

func (b *Buffer) Cap() int {
	return cap(b.core)
}

func (b *Buffer) DebugString() string {
	return fmt.Sprintf("len(core)=%d, rpos=%d, wpos=%d", len(b.core), b.rpos, b.wpos)
}

func (b *Buffer) resetIfEmpty() {
	if b.rpos == b.wpos {
		b.Reset()
	}
}

func roundUpPowerOfTwo(n int) int {
	if n <= 2 {
		return 2
	}

	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	n++
	return n
}
