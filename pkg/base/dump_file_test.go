// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base_test

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/q191201771/naza/pkg/assert"
	"github.com/q191201771/tsdmx/pkg/base"
)

func TestDumpFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "capture.tsdmxdump")

	df := base.NewDumpFile()
	err := df.OpenToWrite(filename)
	assert.Equal(t, nil, err)
	assert.Equal(t, nil, df.Write([]byte("hello")))
	assert.Equal(t, nil, df.Write([]byte{0x47, 0x00}))
	assert.Equal(t, nil, df.Close())

	df = base.NewDumpFile()
	err = df.OpenToRead(filename)
	assert.Equal(t, nil, err)

	m, err := df.ReadOneMessage()
	assert.Equal(t, nil, err)
	assert.Equal(t, uint32(base.DumpTypeTsCapture), m.Typ)
	assert.Equal(t, []byte("hello"), m.Body)
	base.Log.Debugf("%s", m.DebugString())

	m, err = df.ReadOneMessage()
	assert.Equal(t, nil, err)
	assert.Equal(t, []byte{0x47, 0x00}, m.Body)

	_, err = df.ReadOneMessage()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, nil, df.Close())
}
