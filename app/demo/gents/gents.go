// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/tsdmx/pkg/mpegts"
)

// 生成用于测试tsdmx的TS文件
//
// 包含PAT、PMT、一路私有section（pid 0x11, table_id 0x42）、一路视频pes、一路音频pes，以及空包。
// 可以选择在流中插入垃圾字节以及continuity_counter跳变，用于观察重同步以及continuity检查。
//
// Usage of ./bin/gents:
//   -o string
//     	specify output ts file
//   -n int
//     	rounds of pat/pmt/section/pes (default 100)
//   -g	insert garbage bytes every 10 rounds
//   -d	insert continuity discontinuity every 10 rounds
func main() {
	_ = nazalog.Init(func(option *nazalog.Option) {
		option.AssertBehavior = nazalog.AssertFatal
	})
	defer nazalog.Sync()

	outFile, rounds, garbage, discontinuity := parseFlag()

	fw := &mpegts.FileWriter{}
	err := fw.Create(outFile)
	nazalog.Assert(nil, err)
	defer fw.Dispose()

	const (
		pmtPid     = 0x1000
		sectionPid = 0x11
		videoPid   = 0x100
		audioPid   = 0x101
	)

	pat := mpegts.PackPat(1, 0, []mpegts.PatProgramElement{
		{ProgramNumber: 1, ProgramMapPid: pmtPid},
	})
	pmt := mpegts.PackPmt(1, 0, videoPid, []mpegts.PmtProgramElement{
		{StreamType: 0x1B, Pid: videoPid},
		{StreamType: 0x0F, Pid: audioPid},
	})

	var patCc, pmtCc, sectionCc uint8
	video := mpegts.Frame{Pid: videoPid, Sid: mpegts.StreamIdVideo}
	audio := mpegts.Frame{Pid: audioPid, Sid: mpegts.StreamIdAudio}

	var total int
	write := func(b []byte) {
		nazalog.Assert(nil, fw.Write(b))
		total += len(b)
	}

	for i := 0; i < rounds; i++ {
		write(mpegts.PacketizeSections(mpegts.PidPat, &patCc, pat))
		write(mpegts.PacketizeSections(pmtPid, &pmtCc, pmt))

		section := mpegts.Section{
			TableId:          0x42,
			SyntaxIndicator:  true,
			TableIdExtension: uint16(i),
			Version:          uint8(i) & 0x1F,
			Body:             []byte(fmt.Sprintf("round %d", i)),
		}
		write(mpegts.PacketizeSections(sectionPid, &sectionCc, section.Pack()))

		video.Pts = uint64(i)*3600 + 7200
		video.Dts = video.Pts - 3600
		video.Raw = make([]byte, 1000+i%500)
		write(video.Pack())

		audio.Pts = uint64(i) * 1920
		audio.Dts = audio.Pts
		audio.Raw = make([]byte, 200)
		write(audio.Pack())

		write(mpegts.PackTsPacket(mpegts.PidNull, 0, false, nil))

		if i%10 == 9 {
			if garbage {
				write([]byte{0x00, 0x01, 0x02, 0x03, 0x04})
			}
			if discontinuity {
				video.Cc = (video.Cc + 3) & 0x0F
			}
		}
	}
	nazalog.Infof("gen ts succ. file=%s, rounds=%d, bytes=%d", outFile, rounds, total)
}

func parseFlag() (outFile string, rounds int, garbage bool, discontinuity bool) {
	o := flag.String("o", "", "specify output ts file")
	n := flag.Int("n", 100, "rounds of pat/pmt/section/pes")
	g := flag.Bool("g", false, "insert garbage bytes every 10 rounds")
	d := flag.Bool("d", false, "insert continuity discontinuity every 10 rounds")
	flag.Parse()
	if *o == "" {
		flag.Usage()
		_, _ = fmt.Fprintf(os.Stderr, `
Example:
  ./bin/gents -o ./testdata/test.ts -n 1000 -g -d
`)
		os.Exit(1)
	}
	return *o, *n, *g, *d
}
