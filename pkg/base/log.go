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

	"github.com/q191201771/naza/pkg/nazalog"
)

// LogDump 限制流异常日志的打印次数
//
// 噪声流上，重同步、CC不连续这类异常可能每个包都出现一次，全部打印会淹没其他日志。
// 日志级别为trace时全部打印，否则最多打印 maxNum 条，之后只计数。
type LogDump struct {
	log    nazalog.Logger
	maxNum int

	count      int
	suppressed int
}

// NewLogDump
//
// @param maxNum: 日志级别不是trace时，最多打印的次数
func NewLogDump(log nazalog.Logger, maxNum int) LogDump {
	return LogDump{
		log:    log,
		maxNum: maxNum,
	}
}

func (ld *LogDump) ShouldDump() bool {
	if ld.log.GetOption().Level == nazalog.LevelTrace {
		return true
	}
	if ld.count >= ld.maxNum {
		ld.suppressed++
		return false
	}
	ld.count++
	return true
}

// Outf
//
// 调用之前需调用 ShouldDump
// 将 ShouldDump 独立出来的目的是避免不需要打印日志时， Outf 调用前构造实参的开销
func (ld *LogDump) Outf(format string, v ...interface{}) {
	ld.log.Out(nazalog.LevelWarn, 3, fmt.Sprintf(format, v...))
}

// Suppressed 因超过次数而没有打印的日志条数
func (ld *LogDump) Suppressed() int {
	return ld.suppressed
}
