// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package main

import (
	"bytes"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/tsdmx/pkg/base"
	"github.com/q191201771/tsdmx/pkg/mpegts"
)

// 逐个packet对比两个TS输入，打印不一致的packet
//
// 输入可以是TS文件，也可以是tsdmx录制的dump文件（以.tsdmxdump结尾），
// 常用于确认录制文件回放与原始流是否一致。可以按pid过滤。
//
// Usage of ./bin/tscmp:
//   -a string
//     	first input
//   -b string
//     	second input
//   -p int
//     	only compare this pid (default -1, all)
func main() {
	_ = nazalog.Init(func(option *nazalog.Option) {
		option.AssertBehavior = nazalog.AssertFatal
	})
	defer nazalog.Sync()

	a, b, pid := parseFlag()

	tss1 := filterPid(splitPackets(readInput(a)), pid)
	tss2 := filterPid(splitPackets(readInput(b)), pid)
	nazalog.Debugf("num of ts1=%d, num of ts2=%d", len(tss1), len(tss2))

	m := len(tss1)
	if m > len(tss2) {
		m = len(tss2)
	}
	diff := 0
	for i := 0; i < m; i++ {
		if !bytes.Equal(tss1[i], tss2[i]) {
			diff++
			nazalog.Debugf("packet %d not equal.", i)
			parsePacket(tss1[i])
			parsePacket(tss2[i])
			nazalog.Debugf("\n%s", hex.Dump(tss1[i]))
			nazalog.Debugf("\n%s", hex.Dump(tss2[i]))
		}
	}
	nazalog.Infof("compare done. compared=%d, diff=%d", m, diff)
}

func readInput(filename string) []byte {
	if !strings.HasSuffix(filename, ".tsdmxdump") {
		content, err := os.ReadFile(filename)
		nazalog.Assert(nil, err)
		return content
	}

	df := base.NewDumpFile()
	nazalog.Assert(nil, df.OpenToRead(filename))
	defer df.Close()
	var out []byte
	for {
		m, err := df.ReadOneMessage()
		if err == io.EOF {
			break
		}
		nazalog.Assert(nil, err)
		out = append(out, m.Body...)
	}
	return out
}

func splitPackets(b []byte) (ret [][]byte) {
	for {
		packet, skipped, rest := mpegts.NextTsPacket(b)
		if skipped > 0 {
			nazalog.Warnf("skipped %d bytes.", skipped)
		}
		if packet == nil {
			return
		}
		ret = append(ret, packet)
		b = rest
	}
}

func filterPid(tss [][]byte, pid int) (ret [][]byte) {
	if pid < 0 {
		return tss
	}
	for _, ts := range tss {
		p, _ := mpegts.PidOf(ts)
		if int(p) == pid {
			ret = append(ret, ts)
		}
	}
	return
}

func parsePacket(packet []byte) {
	h, err := mpegts.ParseTsPacketHeader(packet)
	if err != nil {
		nazalog.Warnf("parse header failed. err=%+v", err)
		return
	}
	nazalog.Debugf("%+v", h)
	if h.HasAdaptation() {
		af, err := mpegts.ParseTsPacketAdaptation(packet[mpegts.HeaderSize:])
		if err == nil {
			nazalog.Debugf("%+v", af)
		}
	}
}

func parseFlag() (string, string, int) {
	a := flag.String("a", "", "first input")
	b := flag.String("b", "", "second input")
	p := flag.Int("p", -1, "only compare this pid")
	flag.Parse()
	if *a == "" || *b == "" {
		flag.Usage()
		_, _ = fmt.Fprintf(os.Stderr, `
Example:
  ./bin/tscmp -a ./testdata/test.ts -b ./record.tsdmxdump -p 256
`)
		os.Exit(1)
	}
	return *a, *b, *p
}
