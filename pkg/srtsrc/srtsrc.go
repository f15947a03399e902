// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

// Package srtsrc 通过SRT接收TS流作为采集流
package srtsrc

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/haivision/srtgo"
	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/tsdmx/pkg/base"
	"github.com/q191201771/tsdmx/pkg/dmx"
	"github.com/q191201771/tsdmx/pkg/frontend"
)

var Log = nazalog.GetGlobalLogger()

// SRT live模式下每个数据包最多7个TS packet
const srtLivePayloadSize = 1316

type Option struct {
	// Mode "caller" 或 "listener"
	Mode      string
	StreamId  string
	LatencyMs int
}

var defaultOption = Option{
	Mode: "caller",
}

type ModOption func(option *Option)

// ParseUrl 解析 srt://host:port?mode=listener&streamid=xxx&latency=120
func ParseUrl(rawUrl string) (host string, port uint16, option Option, err error) {
	option = defaultOption
	u, err := url.Parse(rawUrl)
	if err != nil {
		return
	}
	if u.Scheme != "srt" {
		err = fmt.Errorf("%w. url=%s", base.ErrConfInvalidInput, rawUrl)
		return
	}
	h, p, err := net.SplitHostPort(u.Host)
	if err != nil {
		return
	}
	p64, err := strconv.ParseUint(p, 10, 16)
	if err != nil {
		return
	}
	host = h
	port = uint16(p64)

	q := u.Query()
	if v := q.Get("mode"); v != "" {
		option.Mode = v
	}
	option.StreamId = q.Get("streamid")
	if v := q.Get("latency"); v != "" {
		if option.LatencyMs, err = strconv.Atoi(v); err != nil {
			return
		}
	}
	if option.Mode != "caller" && option.Mode != "listener" {
		err = fmt.Errorf("%w. mode=%s", base.ErrConfInvalidInput, option.Mode)
	}
	return
}

// Open 建立SRT连接，返回可poll的采集流
//
// listener模式下会阻塞直到第一个caller连入
func Open(rawUrl string, modOptions ...ModOption) (dmx.ByteSource, error) {
	host, port, option, err := ParseUrl(rawUrl)
	if err != nil {
		return nil, err
	}
	for _, fn := range modOptions {
		fn(&option)
	}

	uk := base.GenUkSrtSource()
	options := map[string]string{
		"transtype": "live",
		"blocking":  "1",
		"mode":      option.Mode,
	}
	if option.StreamId != "" {
		options["streamid"] = option.StreamId
	}
	if option.LatencyMs > 0 {
		options["latency"] = strconv.Itoa(option.LatencyMs)
	}

	sck := srtgo.NewSrtSocket(host, port, options)
	if sck == nil {
		return nil, fmt.Errorf("%w. create srt socket failed. url=%s", base.ErrDeviceOpenFailed, rawUrl)
	}

	var conn *srtgo.SrtSocket
	switch option.Mode {
	case "listener":
		if err = sck.Listen(1); err != nil {
			sck.Close()
			return nil, err
		}
		var addr *net.UDPAddr
		conn, addr, err = sck.Accept()
		sck.Close()
		if err != nil {
			return nil, err
		}
		Log.Infof("[%s] srt accept. remote=%s", uk, addr.String())
	default:
		if err = sck.Connect(); err != nil {
			sck.Close()
			return nil, err
		}
		conn = sck
		Log.Infof("[%s] srt connected. url=%s", uk, rawUrl)
	}

	return frontend.NewReaderSource(&socketReader{uniqueKey: uk, sck: conn}, func(option *frontend.ReaderSourceOption) {
		option.ChunkSize = srtLivePayloadSize
		option.QueueSize = 256
	}), nil
}

type socketReader struct {
	uniqueKey string
	sck       *srtgo.SrtSocket
}

func (r *socketReader) Read(b []byte) (int, error) {
	return r.sck.Read(b)
}

func (r *socketReader) Close() error {
	Log.Infof("[%s] srt close.", r.uniqueKey)
	r.sck.Close()
	return nil
}
