// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

import (
	"errors"
	"fmt"
)

// ----- 通用的 ---------------------------------------------------------------------------------------------------------

var (
	ErrShortBuffer  = errors.New("tsdmx: buffer too short")
	ErrFileNotExist = errors.New("tsdmx: file not exist")
)

// ----- pkg/mpegts ----------------------------------------------------------------------------------------------------

var (
	ErrShortPacket         = errors.New("tsdmx.mpegts: packet too short")
	ErrSyncByte            = errors.New("tsdmx.mpegts: invalid sync byte")
	ErrAdaptationOverflow  = errors.New("tsdmx.mpegts: adaptation field overflows packet")
	ErrShortSectionPayload = errors.New("tsdmx.mpegts: section payload too short")
)

func NewErrShortPacket(need, actual int) error {
	return fmt.Errorf("%w. need=%d, actual=%d", ErrShortPacket, need, actual)
}

func NewErrSyncByte(b byte) error {
	return fmt.Errorf("%w. b=0x%02x", ErrSyncByte, b)
}

func NewErrAdaptationOverflow(afLength int) error {
	return fmt.Errorf("%w. adaptation_field_length=%d", ErrAdaptationOverflow, afLength)
}

// ----- pkg/dmx -------------------------------------------------------------------------------------------------------

var (
	ErrNoFreeChannel        = errors.New("tsdmx.dmx: no free channel")
	ErrNoFreeFilter         = errors.New("tsdmx.dmx: no free filter")
	ErrChannelKindConflict  = errors.New("tsdmx.dmx: channel kind conflict")
	ErrPesChannelBusy       = errors.New("tsdmx.dmx: pes channel already has a filter")
	ErrInvalidFilter        = errors.New("tsdmx.dmx: invalid filter handle")
	ErrFilterNotConfigured  = errors.New("tsdmx.dmx: filter not configured")
	ErrInvalidPid           = errors.New("tsdmx.dmx: invalid pid")
	ErrDeviceOpenFailed     = errors.New("tsdmx.dmx: device open failed")
	ErrTapProgrammingFailed = errors.New("tsdmx.dmx: tap programming failed")
	ErrDmxClosed            = errors.New("tsdmx.dmx: demux closed")
)

func NewErrChannelKindConflict(pid uint16, have, want fmt.Stringer) error {
	return fmt.Errorf("%w. pid=%d, have=%s, want=%s", ErrChannelKindConflict, pid, have, want)
}

func NewErrNoFreeChannel(pid uint16, capacity int) error {
	return fmt.Errorf("%w. pid=%d, capacity=%d", ErrNoFreeChannel, pid, capacity)
}

func NewErrInvalidPid(pid uint16) error {
	return fmt.Errorf("%w. pid=%d", ErrInvalidPid, pid)
}

func NewErrDeviceOpenFailed(index int, err error) error {
	return fmt.Errorf("%w. index=%d, err=%+v", ErrDeviceOpenFailed, index, err)
}

func NewErrTapProgrammingFailed(pid uint16, step string, err error) error {
	return fmt.Errorf("%w. pid=%d, step=%s, err=%+v", ErrTapProgrammingFailed, pid, step, err)
}

// ----- pkg/frontend --------------------------------------------------------------------------------------------------

var (
	// ErrWouldBlock 读取时当前没有可读数据，不是错误，调用方下次再poll即可
	ErrWouldBlock = errors.New("tsdmx.frontend: would block")

	ErrSourceClosed     = errors.New("tsdmx.frontend: source closed")
	ErrNoSuchDevice     = errors.New("tsdmx.frontend: no such device")
	ErrTapNotProgrammed = errors.New("tsdmx.frontend: tap not programmed")
)

// ----- pkg/logic -----------------------------------------------------------------------------------------------------

var (
	ErrConfInvalidFilter = errors.New("tsdmx.logic: invalid filter in conf")
	ErrConfInvalidInput  = errors.New("tsdmx.logic: invalid input in conf")
)

// ---------------------------------------------------------------------------------------------------------------------
