// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

import (
	"testing"

	"github.com/q191201771/naza/pkg/assert"
)

func TestBuffer(t *testing.T) {
	golden := []byte("1234567890")

	b := NewBuffer(8)
	assert.Equal(t, nil, b.Bytes())
	assert.Equal(t, 8, len(b.WritableBytes()))
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 8, b.Cap())

	// 简单写读
	buf := b.ReserveBytes(5)
	copy(buf, golden[:5])
	b.Flush(5)
	assert.Equal(t, golden[:5], b.Bytes())
	b.Skip(5)
	assert.Equal(t, nil, b.Bytes())
	assert.Equal(t, 0, b.Len())

	// 发生扩容
	buf = b.ReserveBytes(10)
	copy(buf, golden)
	b.Flush(10)
	assert.Equal(t, golden, b.Bytes())
	assert.Equal(t, 16, b.Cap())

	// 残余数据挪到头部
	b.Skip(7)
	buf = b.ReserveBytes(12)
	copy(buf, golden)
	b.Flush(10)
	assert.Equal(t, 13, b.Len())
	assert.Equal(t, 16, b.Cap())
	assert.Equal(t, golden[7:], b.Bytes()[:3])
	assert.Equal(t, golden, b.Bytes()[3:])
}

func TestBuffer_GrowKeepsCarry(t *testing.T) {
	b := NewBuffer(4)
	_, _ = b.Write([]byte{1, 2, 3, 4})
	b.Skip(1)
	buf := b.ReserveBytes(100)
	assert.Equal(t, 100, len(buf))
	assert.Equal(t, []byte{2, 3, 4}, b.Bytes())
}

func TestBuffer_Corner(t *testing.T) {
	b := NewBuffer(4)
	b.Flush(8)
	assert.Equal(t, nil, b.WritableBytes())
	assert.Equal(t, 4, b.Len())
	b.Skip(5)
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 2, roundUpPowerOfTwo(1))
	assert.Equal(t, 256, roundUpPowerOfTwo(200))
}
