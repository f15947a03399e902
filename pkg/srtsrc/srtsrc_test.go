// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package srtsrc_test

import (
	"errors"
	"testing"

	"github.com/q191201771/naza/pkg/assert"
	"github.com/q191201771/tsdmx/pkg/base"
	"github.com/q191201771/tsdmx/pkg/srtsrc"
)

func TestParseUrl(t *testing.T) {
	host, port, option, err := srtsrc.ParseUrl("srt://127.0.0.1:6001")
	assert.Equal(t, nil, err)
	assert.Equal(t, "127.0.0.1", host)
	assert.Equal(t, uint16(6001), port)
	assert.Equal(t, "caller", option.Mode)

	host, port, option, err = srtsrc.ParseUrl("srt://:7001?mode=listener&streamid=live.test&latency=200")
	assert.Equal(t, nil, err)
	assert.Equal(t, "", host)
	assert.Equal(t, uint16(7001), port)
	assert.Equal(t, "listener", option.Mode)
	assert.Equal(t, "live.test", option.StreamId)
	assert.Equal(t, 200, option.LatencyMs)

	_, _, _, err = srtsrc.ParseUrl("udp://127.0.0.1:6001")
	assert.Equal(t, true, errors.Is(err, base.ErrConfInvalidInput))
	_, _, _, err = srtsrc.ParseUrl("srt://127.0.0.1:6001?mode=rendezvous")
	assert.Equal(t, true, errors.Is(err, base.ErrConfInvalidInput))
	_, _, _, err = srtsrc.ParseUrl("srt://127.0.0.1")
	assert.IsNotNil(t, err)
}
