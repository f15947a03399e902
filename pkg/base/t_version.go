// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

// TsdmxVersion 整个tsdmx工程的版本号。注意，该变量由外部脚本修改维护，不要手动在代码中修改
//
const TsdmxVersion = "v0.1.0"

// ConfVersion tsdmx命令行工具配置文件的版本号
//
const ConfVersion = "v0.1.0"

var (
	TsdmxLibraryName = "tsdmx"
	TsdmxGithubRepo  = "github.com/q191201771/tsdmx"
	TsdmxGithubSite  = "https://github.com/q191201771/tsdmx"

	// TsdmxFullInfo e.g. tsdmx v0.1.0 (github.com/q191201771/tsdmx)
	TsdmxFullInfo = TsdmxLibraryName + " " + TsdmxVersion + " (" + TsdmxGithubRepo + ")"
)
