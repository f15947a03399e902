// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

import "github.com/q191201771/naza/pkg/unique"

const (
	UkPreDmx          = "DMX"
	UkPreSoftFrontend = "SOFTFE"
	UkPreSrtSource    = "SRTSRC"
)

func GenUkDmx() string {
	return siUkDmx.GenUniqueKey()
}

func GenUkSoftFrontend() string {
	return siUkSoftFrontend.GenUniqueKey()
}

func GenUkSrtSource() string {
	return siUkSrtSource.GenUniqueKey()
}

var (
	siUkDmx          *unique.SingleGenerator
	siUkSoftFrontend *unique.SingleGenerator
	siUkSrtSource    *unique.SingleGenerator
)

func init() {
	siUkDmx = unique.NewSingleGenerator(UkPreDmx)
	siUkSoftFrontend = unique.NewSingleGenerator(UkPreSoftFrontend)
	siUkSrtSource = unique.NewSingleGenerator(UkPreSrtSource)
}
