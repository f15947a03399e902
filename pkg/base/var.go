// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

import "github.com/q191201771/naza/pkg/nazalog"

var Log = nazalog.GetGlobalLogger()

// ----- dmx --------------------
var (
	// DmxLogDumpDebugMaxNum 每个demux实例流异常（重同步、CC不连续等）最多打印的条数，以warn级别打印。
	// 超过后只计数不打印。日志级别为trace时不限制
	DmxLogDumpDebugMaxNum = 64

	// DmxReadChunkSize 每次PollOnce从采集流读取的最大字节数，取188的整数倍
	DmxReadChunkSize = 188 * 64
)
