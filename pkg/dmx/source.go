// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package dmx

import "time"

// ByteSource 采集流。tap把选中PID的TS packet汇入其中，StreamReader从中读取
//
// 设备节点的打开关闭属于外部协作方，这里只约定接口
type ByteSource interface {
	// Poll 等待可读。超时返回 false, nil
	Poll(timeout time.Duration) (readable bool, err error)

	// Read 非阻塞读。当前没有数据时返回 base.ErrWouldBlock
	Read(b []byte) (n int, err error)

	Close() error
}

// SourceOpener 根据设备索引打开采集流
type SourceOpener func(deviceIndex int) (ByteSource, error)

// TapDevice 硬件demux通路。每个tap把一个PID的packet路由进采集流
type TapDevice interface {
	OpenTap(deviceIndex int) (Tap, error)
}

type Tap interface {
	SetPesFilter(params TapParams) error
	Start() error
	Close() error
}

type TapInput uint8

const (
	TapInputFrontend TapInput = iota
	TapInputDvr
)

type TapOutput uint8

const (
	TapOutputDecoder TapOutput = iota
	TapOutputTap
	TapOutputTsTap
)

type TapPesType uint8

const (
	TapPesTypeOther TapPesType = 20
)

// TapParams 对应linux dvb的dmx_pes_filter_params
type TapParams struct {
	Pid     uint16
	Input   TapInput
	Output  TapOutput
	PesType TapPesType
}
