// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package logic

import "github.com/q191201771/naza/pkg/nazalog"

var Log = nazalog.GetGlobalLogger()

// 每个pid最多打印多少次收到数据的日志
var deliverLogMaxNumPerPid = 8

// 输出文件创建、写入失败的日志最多打印多少条
var outLogDumpMaxNum = 16
