// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package dmx

import (
	"github.com/q191201771/naza/pkg/nazaerrors"
	"github.com/q191201771/tsdmx/pkg/base"
)

type TapResult struct {
	Pid uint16
	Err error
}

// TapReport 一次重建的结果，每个活跃pid一条
type TapReport struct {
	Results []TapResult
}

// Err 所有失败合并成一个error，全部成功时返回nil
func (r TapReport) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return nazaerrors.CombineErrors(errs...)
}

func (r TapReport) OkPids() []uint16 {
	var pids []uint16
	for _, res := range r.Results {
		if res.Err == nil {
			pids = append(pids, res.Pid)
		}
	}
	return pids
}

// ---------------------------------------------------------------------------------------------------------------------

type openTap struct {
	pid uint16
	tap Tap
}

// TapReconciler 维护硬件tap，使tap路由的pid集合与活跃channel的pid集合一致
//
// 每次都是全部关闭再全部重建，不做增量修改。
// device为nil时表示采集流本身已包含所有pid，Rebuild只生成报告。
type TapReconciler struct {
	uniqueKey   string
	device      TapDevice
	deviceIndex int

	taps []openTap
}

func NewTapReconciler(uniqueKey string, device TapDevice, deviceIndex int) *TapReconciler {
	return &TapReconciler{
		uniqueKey:   uniqueKey,
		device:      device,
		deviceIndex: deviceIndex,
	}
}

// Rebuild 单个tap失败只记录日志并跳过，继续处理其他pid
func (tr *TapReconciler) Rebuild(pids []uint16) TapReport {
	tr.closeAll()

	report := TapReport{
		Results: make([]TapResult, 0, len(pids)),
	}
	for _, pid := range pids {
		err := tr.openOne(pid)
		if err != nil {
			Log.Errorf("[%s] tap programming failed. pid=%d, err=%+v", tr.uniqueKey, pid, err)
		}
		report.Results = append(report.Results, TapResult{Pid: pid, Err: err})
	}
	Log.Debugf("[%s] tap rebuild. pids=%v, open=%d", tr.uniqueKey, pids, len(tr.taps))
	return report
}

// Pids 当前已打开的tap所路由的pid
func (tr *TapReconciler) Pids() []uint16 {
	pids := make([]uint16, 0, len(tr.taps))
	for _, t := range tr.taps {
		pids = append(pids, t.pid)
	}
	return pids
}

func (tr *TapReconciler) Close() error {
	return tr.closeAll()
}

func (tr *TapReconciler) openOne(pid uint16) error {
	if tr.device == nil {
		return nil
	}

	tap, err := tr.device.OpenTap(tr.deviceIndex)
	if err != nil {
		return base.NewErrTapProgrammingFailed(pid, "open", err)
	}
	params := TapParams{
		Pid:     pid,
		Input:   TapInputFrontend,
		Output:  TapOutputTsTap,
		PesType: TapPesTypeOther,
	}
	if err = tap.SetPesFilter(params); err != nil {
		_ = tap.Close()
		return base.NewErrTapProgrammingFailed(pid, "set_pes_filter", err)
	}
	if err = tap.Start(); err != nil {
		_ = tap.Close()
		return base.NewErrTapProgrammingFailed(pid, "start", err)
	}
	tr.taps = append(tr.taps, openTap{pid: pid, tap: tap})
	return nil
}

func (tr *TapReconciler) closeAll() error {
	var errs []error
	for _, t := range tr.taps {
		if err := t.tap.Close(); err != nil {
			Log.Warnf("[%s] close tap failed. pid=%d, err=%+v", tr.uniqueKey, t.pid, err)
			errs = append(errs, err)
		}
	}
	tr.taps = tr.taps[:0]
	if len(errs) == 0 {
		return nil
	}
	return nazaerrors.CombineErrors(errs...)
}
