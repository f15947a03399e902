// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

//go:build linux || darwin || netbsd || freebsd || openbsd || dragonfly

package base

import (
	"os"
	"os/signal"
	"syscall"
)

// RunSignalHandler 阻塞直到收到退出信号，然后调用`cb`
func RunSignalHandler(cb func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)
	s := <-c
	Log.Infof("recv signal. s=%+v", s)
	cb()
}
