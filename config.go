package slcanx

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/ini.v1"
)

// PortConfig is the startup configuration for a Port and its channels,
// loaded from an INI file: a `[port]` section for port-wide tunables and
// one `[channelN]` section (N in 0..MaxChannels-1) per logical interface
// to pre-configure with Channel.Configure before Open.
type PortConfig struct {
	BatchWindow time.Duration
	Channels    [MaxChannels]ChannelConfig
}

// ChannelConfig is one `[channelN]` section's decoded settings.
type ChannelConfig struct {
	Set              bool
	Nominal          BitTiming
	Data             BitTiming
	FD               bool
	ListenOnly       bool
	ErrorResetOnOpen bool
}

var channelSectionRE = regexp.MustCompile(`^channel([0-3])$`)

// LoadPortConfig parses an INI-formatted configuration from filePathOrData,
// which may be a file path or a []byte, per gopkg.in/ini.v1's Load.
func LoadPortConfig(filePathOrData any) (*PortConfig, error) {
	f, err := ini.Load(filePathOrData)
	if err != nil {
		return nil, fmt.Errorf("slcanx: load config: %w", err)
	}

	cfg := &PortConfig{}
	if portSec, err := f.GetSection("port"); err == nil {
		if us := portSec.Key("TxBatchUs").MustUint(0); us > 0 {
			cfg.BatchWindow = time.Duration(us) * time.Microsecond
		}
	}

	for _, section := range f.Sections() {
		m := channelSectionRE.FindStringSubmatch(section.Name())
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, err
		}
		cc := ChannelConfig{
			Set:              true,
			FD:               section.Key("FD").MustBool(false),
			ListenOnly:       section.Key("ListenOnly").MustBool(false),
			ErrorResetOnOpen: section.Key("ErrorResetOnOpen").MustBool(false),
			Nominal: BitTiming{
				BitrateBPS:  uint32(section.Key("NominalBitrate").MustUint(0)),
				SamplePoint: uint16(section.Key("NominalSamplePoint").MustUint(0)),
			},
			Data: BitTiming{
				BitrateBPS:  uint32(section.Key("DataBitrate").MustUint(0)),
				SamplePoint: uint16(section.Key("DataSamplePoint").MustUint(0)),
			},
		}
		cfg.Channels[idx] = cc
	}
	return cfg, nil
}

// Apply configures p's batch window and each pre-configured channel's
// timing and mode. It must run before any affected channel is opened.
func (c *PortConfig) Apply(p *Port) error {
	p.SetBatchWindow(c.BatchWindow)
	for i, cc := range c.Channels {
		if !cc.Set {
			continue
		}
		ch := p.Channel(i)
		if ch == nil {
			continue
		}
		mode := ControlMode(0)
		if cc.FD {
			mode |= ModeFD
		}
		if cc.ListenOnly {
			mode |= ModeListenOnly
		}
		if err := ch.Configure(cc.Nominal, cc.Data, mode); err != nil {
			return fmt.Errorf("slcanx: configure channel %d: %w", i, err)
		}
		if err := ch.SetErrorResetOnOpen(cc.ErrorResetOnOpen); err != nil {
			return fmt.Errorf("slcanx: configure channel %d: %w", i, err)
		}
	}
	return nil
}
