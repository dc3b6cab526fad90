// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package commands

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"github.com/toitlang/sadscope/cmd/sadscope/console"
	"github.com/toitlang/sadscope/cmd/sadscope/directory"
)

type BoardSettings struct {
	LEDWidth   int     `mapstructure:"led-width" yaml:"led-width" json:"ledWidth"`
	DelayScale float64 `mapstructure:"delay-scale" yaml:"delay-scale" json:"delayScale"`
}

type ConsoleSettings struct {
	Prompt bool          `mapstructure:"prompt" yaml:"prompt" json:"prompt"`
	Banner bool          `mapstructure:"banner" yaml:"banner" json:"banner"`
	Idle   time.Duration `mapstructure:"idle" yaml:"idle" json:"idle"`
}

// Settings is the typed view of the user config.
type Settings struct {
	Port     string           `mapstructure:"port" yaml:"port" json:"port"`
	Baud     uint             `mapstructure:"baud" yaml:"baud" json:"baud"`
	Features console.Features `mapstructure:"features" yaml:"features" json:"features"`
	Board    BoardSettings    `mapstructure:"board" yaml:"board" json:"board"`
	Console  ConsoleSettings  `mapstructure:"console" yaml:"console" json:"console"`
}

func decodeSettings(raw interface{}) (Settings, error) {
	var res Settings
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           &res,
	})
	if err != nil {
		return res, err
	}
	if err := decoder.Decode(raw); err != nil {
		return res, fmt.Errorf("invalid configuration: %w", err)
	}
	return res, nil
}

func LoadSettings(cfg *viper.Viper) (Settings, error) {
	return decodeSettings(cfg.AllSettings())
}

// GetSettings reads the user config.
func GetSettings() (*viper.Viper, Settings, error) {
	cfg, err := directory.GetUserConfig()
	if err != nil {
		return nil, Settings{}, err
	}
	settings, err := LoadSettings(cfg)
	if err != nil {
		return nil, Settings{}, err
	}
	return cfg, settings, nil
}
