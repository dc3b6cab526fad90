// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package directory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// UserConfigPathEnv if set, will load the user config from that path.
	UserConfigPathEnv = "SADSCOPE_USER_CONFIG_PATH"
)

// Config keys.
const (
	PortKey              = "port"
	BaudKey              = "baud"
	FeaturesKey          = "features"
	FeatureLEDsKey       = "features.leds"
	FeatureCxxKey        = "features.cxx"
	FeatureInterruptsKey = "features.interrupts"
	BoardLEDWidthKey     = "board.led-width"
	BoardDelayScaleKey   = "board.delay-scale"
	ConsolePromptKey     = "console.prompt"
	ConsoleBannerKey     = "console.banner"
	ConsoleIdleKey       = "console.idle"
)

const (
	DefaultBaud = 115200
	// DefaultTCPAddress is the conventional SCPI raw socket port.
	DefaultTCPAddress = ":5025"
)

func GetUserConfigPath() (string, error) {
	if path, ok := os.LookupEnv(UserConfigPathEnv); ok {
		return path, nil
	}

	homedir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homedir, ".config", "sadscope", "config.yaml"), nil
}

func setDefaults(cfg *viper.Viper) {
	cfg.SetDefault(BaudKey, DefaultBaud)
	cfg.SetDefault(FeatureLEDsKey, true)
	cfg.SetDefault(FeatureCxxKey, false)
	cfg.SetDefault(FeatureInterruptsKey, true)
	cfg.SetDefault(BoardLEDWidthKey, 8)
	cfg.SetDefault(BoardDelayScaleKey, 1.0)
	cfg.SetDefault(ConsolePromptKey, false)
	cfg.SetDefault(ConsoleBannerKey, false)
	cfg.SetDefault(ConsoleIdleKey, "1ms")
}

func GetUserConfig() (*viper.Viper, error) {
	path, err := GetUserConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get user config path: %w", err)
	}

	cfg := viper.New()
	cfg.SetConfigType("yaml")
	cfg.SetConfigFile(path)
	setDefaults(cfg)
	if _, err := os.Stat(path); err == nil {
		if err := cfg.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read user config: %w", err)
		}
	}
	return cfg, nil
}

func WriteConfig(cfg *viper.Viper) error {
	file := cfg.ConfigFileUsed()
	dir := filepath.Dir(file)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	tmpFile := filepath.Join(filepath.Dir(file), ".config.tmp.yaml")
	if err := cfg.WriteConfigAs(tmpFile); err != nil {
		return err
	}
	defer os.Remove(tmpFile)

	return os.Rename(tmpFile, file)
}
