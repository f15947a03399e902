// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package logic

import (
	"fmt"
	"os"
	"sync"

	"github.com/q191201771/tsdmx/pkg/base"
	"github.com/q191201771/tsdmx/pkg/dmx"
	"github.com/q191201771/tsdmx/pkg/frontend"
)

// InputOpener 根据 Config.Input 去掉scheme之后的部分打开采集流
type InputOpener func(path string) (dmx.ByteSource, error)

var (
	inputOpenersMu sync.Mutex
	inputOpeners   = map[string]InputOpener{
		"file": openFileInput,
		"dump": openDumpInput,
		"-":    openStdinInput,
	}
)

// RegisterInputOpener 注册新的输入类型，比如srt
func RegisterInputOpener(scheme string, opener InputOpener) {
	inputOpenersMu.Lock()
	defer inputOpenersMu.Unlock()
	inputOpeners[scheme] = opener
}

func OpenInput(input string) (dmx.ByteSource, error) {
	scheme, path, err := SplitInput(input)
	if err != nil {
		return nil, err
	}
	inputOpenersMu.Lock()
	opener, ok := inputOpeners[scheme]
	inputOpenersMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w. unsupported scheme=%s", base.ErrConfInvalidInput, scheme)
	}
	return opener(path)
}

func openFileInput(path string) (dmx.ByteSource, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return frontend.NewReaderSource(fp), nil
}

func openDumpInput(path string) (dmx.ByteSource, error) {
	return frontend.OpenDumpFileSource(path)
}

func openStdinInput(path string) (dmx.ByteSource, error) {
	return frontend.NewReaderSource(os.Stdin), nil
}
