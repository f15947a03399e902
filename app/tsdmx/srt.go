// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

//go:build !nosrt

package main

import (
	"github.com/q191201771/tsdmx/pkg/dmx"
	"github.com/q191201771/tsdmx/pkg/logic"
	"github.com/q191201771/tsdmx/pkg/srtsrc"
)

// 依赖libsrt，不需要srt输入时可以使用 -tags nosrt 编译
func init() {
	logic.RegisterInputOpener("srt", func(path string) (dmx.ByteSource, error) {
		return srtsrc.Open(path)
	})
}
