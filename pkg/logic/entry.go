// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package logic

import (
	"os"
	"strings"

	"github.com/q191201771/naza/pkg/bininfo"
	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/tsdmx/pkg/base"
)

// Entry 命令行工具的入口，阻塞直到结束
func Entry(confFile string) {
	config := LoadConfAndInitLog(confFile)

	dir, _ := os.Getwd()
	Log.Infof("wd: %s", dir)
	Log.Infof("args: %s", strings.Join(os.Args, " "))
	Log.Infof("bininfo: %s", bininfo.StringifySingleLine())
	Log.Infof("version: %s", base.TsdmxFullInfo)
	Log.Infof("github: %s", base.TsdmxGithubSite)

	r := NewRunner(config)
	if err := r.Start(); err != nil {
		Log.Errorf("start failed. err=%+v", err)
		_ = r.Dispose()
		nazalog.Sync()
		os.Exit(1)
	}

	go base.RunSignalHandler(func() {
		r.Stop()
	})

	err := r.RunLoop()
	if err != nil {
		Log.Errorf("run loop break. err=%+v", err)
	}
	if err = r.Dispose(); err != nil {
		Log.Warnf("dispose failed. err=%+v", err)
	}
	nazalog.Sync()
}
