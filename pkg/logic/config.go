// Copyright 2026, Chef.  All rights reserved.
// https://github.com/q191201771/tsdmx
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package logic

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/q191201771/naza/pkg/nazajson"
	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/tsdmx/pkg/base"
	"github.com/q191201771/tsdmx/pkg/dmx"
	"github.com/q191201771/tsdmx/pkg/mpegts"
)

type Config struct {
	ConfVersion string `json:"conf_version"`

	DeviceIndex int `json:"device_index"`

	// Input 输入，支持:
	//   file://path  TS文件
	//   dump://path  base.DumpFile 格式的录制文件
	//   srt://host:port?mode=caller|listener
	//   -            stdin
	Input string `json:"input"`

	// SoftTap 为true时输入被当作完整的TS流，使用软件tap只把活跃pid放进采集流
	SoftTap bool `json:"soft_tap"`

	PollTimeoutMs  int    `json:"poll_timeout_ms"`
	MaxPolls       int    `json:"max_polls"` // 0表示不限制
	RecordFilename string `json:"record_filename"`

	// OutDir 不为空时，每个pid收到的数据写入 <out_dir>/<pid>.sec 或 <out_dir>/<pid>.pes
	OutDir string `json:"out_dir"`

	// AutoDiscover 自动根据PAT、PMT打开PMT section filter以及各节目的pes filter
	AutoDiscover bool `json:"auto_discover"`

	SectionFilters []SectionFilterConfig `json:"section_filters"`
	PesFilters     []PesFilterConfig     `json:"pes_filters"`

	LogConfig nazalog.Option `json:"log"`
}

// SectionFilterConfig filter、mask、mode为十六进制字符串，最多16字节，不足的部分补0
type SectionFilterConfig struct {
	Pid      uint16 `json:"pid"`
	Filter   string `json:"filter"`
	Mask     string `json:"mask"`
	Mode     string `json:"mode"`
	CheckCrc bool   `json:"check_crc"`
	OneShot  bool   `json:"one_shot"`
}

type PesFilterConfig struct {
	Pid    uint16 `json:"pid"`
	Output string `json:"output"` // "tap" 或 "pass"
}

func LoadConfAndInitLog(confFile string) *Config {
	var config *Config
	var err error

	// 读取配置文件的错误先缓存，日志初始化之后再打印
	config, err = LoadConf(confFile)

	initLog(config)
	if err != nil {
		Log.Errorf("load conf failed. file=%s err=%+v", confFile, err)
		os.Exit(1)
	}
	Log.Infof("load conf file succ. file=%s content=%+v", confFile, config)

	if config.ConfVersion != base.ConfVersion {
		Log.Warnf("config version invalid. conf version of tsdmx=%s, conf version of config file=%s",
			base.ConfVersion, config.ConfVersion)
	}
	return config
}

// LoadConf 出错时也返回默认日志配置，供调用方初始化日志
func LoadConf(confFile string) (*Config, error) {
	config := &Config{}
	rawContent, err := os.ReadFile(confFile)
	if err != nil {
		fillDefault(config, nil)
		return config, err
	}
	return ParseConf(rawContent)
}

func ParseConf(rawContent []byte) (*Config, error) {
	config := &Config{}
	if err := json.Unmarshal(rawContent, config); err != nil {
		fillDefault(config, nil)
		return config, err
	}
	j, err := nazajson.New(rawContent)
	if err != nil {
		fillDefault(config, nil)
		return config, err
	}
	fillDefault(config, &j)

	if err = config.validate(); err != nil {
		return config, err
	}
	return config, nil
}

func fillDefault(config *Config, j *nazajson.Json) {
	exist := func(path string) bool {
		return j != nil && j.Exist(path)
	}

	if !exist("input") {
		config.Input = "-"
	}
	if !exist("soft_tap") {
		config.SoftTap = true
	}
	if !exist("poll_timeout_ms") {
		config.PollTimeoutMs = 1000
	}

	if !exist("log.level") {
		config.LogConfig.Level = nazalog.LevelInfo
	}
	if !exist("log.filename") {
		config.LogConfig.Filename = "./logs/tsdmx.log"
	}
	if !exist("log.is_to_stdout") {
		config.LogConfig.IsToStdout = true
	}
	if !exist("log.is_rotate_daily") {
		config.LogConfig.IsRotateDaily = true
	}
	if !exist("log.short_file_flag") {
		config.LogConfig.ShortFileFlag = true
	}
	if !exist("log.assert_behavior") {
		config.LogConfig.AssertBehavior = nazalog.AssertError
	}
}

func (c *Config) validate() error {
	if _, _, err := SplitInput(c.Input); err != nil {
		return err
	}
	for i := range c.SectionFilters {
		if _, _, _, err := c.SectionFilters[i].Bytes(); err != nil {
			return err
		}
		if c.SectionFilters[i].Pid >= mpegts.PidNull {
			return fmt.Errorf("%w. section_filters[%d] pid=%d", base.ErrConfInvalidFilter, i, c.SectionFilters[i].Pid)
		}
	}
	for i := range c.PesFilters {
		if _, err := c.PesFilters[i].PesOutput(); err != nil {
			return err
		}
		if c.PesFilters[i].Pid >= mpegts.PidNull {
			return fmt.Errorf("%w. pes_filters[%d] pid=%d", base.ErrConfInvalidFilter, i, c.PesFilters[i].Pid)
		}
	}
	return nil
}

// Bytes 转换成 dmx.DemuxInstance.ConfigureSectionFilter 需要的格式
func (s *SectionFilterConfig) Bytes() (filter, mask, mode [dmx.FilterSize]byte, err error) {
	if filter, err = parseHexFilter(s.Filter); err != nil {
		return
	}
	if mask, err = parseHexFilter(s.Mask); err != nil {
		return
	}
	mode, err = parseHexFilter(s.Mode)
	return
}

func (s *SectionFilterConfig) ModOptions() []dmx.ModSectionFilterOption {
	var mos []dmx.ModSectionFilterOption
	if s.CheckCrc {
		mos = append(mos, dmx.SectionFilterOptCheckCrc)
	}
	if s.OneShot {
		mos = append(mos, dmx.SectionFilterOptOneShot)
	}
	return mos
}

func (p *PesFilterConfig) PesOutput() (dmx.PesOutput, error) {
	switch strings.ToLower(p.Output) {
	case "", "tap":
		return dmx.PesOutputTap, nil
	case "pass":
		return dmx.PesOutputPass, nil
	}
	return dmx.PesOutputTap, fmt.Errorf("%w. pid=%d, output=%s", base.ErrConfInvalidFilter, p.Pid, p.Output)
}

// SplitInput 拆分成scheme和路径，stdin的scheme为"-"
func SplitInput(input string) (scheme string, path string, err error) {
	if input == "-" {
		return "-", "", nil
	}
	index := strings.Index(input, "://")
	if index <= 0 {
		return "", "", fmt.Errorf("%w. input=%s", base.ErrConfInvalidInput, input)
	}
	scheme = input[:index]
	if scheme == "srt" {
		return scheme, input, nil
	}
	return scheme, input[index+3:], nil
}

func parseHexFilter(s string) (out [dmx.FilterSize]byte, err error) {
	s = strings.ReplaceAll(s, " ", "")
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("%w. hex=%s, err=%+v", base.ErrConfInvalidFilter, s, err)
	}
	if len(b) > dmx.FilterSize {
		return out, fmt.Errorf("%w. hex=%s, len=%d", base.ErrConfInvalidFilter, s, len(b))
	}
	copy(out[:], b)
	return out, nil
}

func initLog(config *Config) {
	if err := nazalog.Init(func(option *nazalog.Option) {
		*option = config.LogConfig
	}); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "initial log failed. err=%+v\n", err)
		os.Exit(1)
	}
	Log.Info("initial log succ.")
}
