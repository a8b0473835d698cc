/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package config resolves the player settings. Later sources win:
// built-in defaults, the env file, KMP_* environment variables, command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/lo"

	"kmp/internal/catalog"
	"kmp/internal/sink"
	"kmp/internal/visualizer"
	"kmp/pkg/defaults"
)

const EnvPrefix = "KMP_"

type Config struct {
	Volume      float64
	VolumePower float64
	MinVolume   float64
	MaxVolume   float64

	MinSampleRate int
	MaxSampleRate int

	SeekStep      time.Duration
	UpdateRate    time.Duration
	PromptTimeout time.Duration
	WrapSelection bool

	Visualizer       bool
	VisualizerMode   visualizer.Mode
	VisualizerScalar float64

	Sink   sink.Kind
	Repeat catalog.RepeatMode

	Socket string
	MPRIS  bool

	LogFile  string
	LogLevel slog.Level

	// Warnings collects values that were rejected and replaced by the previous one.
	Warnings []string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Volume:           defaults.Volume,
		VolumePower:      defaults.VolumePower,
		MinVolume:        defaults.MinVolume,
		MaxVolume:        defaults.MaxVolume,
		MinSampleRate:    defaults.MinSampleRate,
		MaxSampleRate:    defaults.MaxSampleRate,
		SeekStep:         defaults.SeekStep,
		UpdateRate:       defaults.UpdateRate,
		PromptTimeout:    defaults.PromptTimeout,
		WrapSelection:    defaults.WrapSelection,
		Visualizer:       defaults.DrawVisualizer,
		VisualizerMode:   visualizer.FFT,
		VisualizerScalar: defaults.VisualizerScalar,
		Sink:             sink.KindSpeaker,
		Repeat:           catalog.RepeatNone,
		Socket:           defaultSocket(),
		MPRIS:            true,
		LogFile:          defaultLogFile(),
		LogLevel:         slog.LevelInfo,
	}
}

// Load applies the env file at path (a missing file is not an error) and then the
// process environment.
func Load(path string, environ []string) (Config, error) {
	c := Default()

	if path != "" {
		values, err := godotenv.Read(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return c, fmt.Errorf("read %s: %w", path, err)
		default:
			c.applyMap(values, "")
		}
	}

	env := map[string]string{}
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, EnvPrefix) {
			env[k] = v
		}
	}
	c.applyMap(env, EnvPrefix)

	c.Normalize()
	return c, nil
}

// applyMap sets keys in a stable order so warnings come out the same way every run.
func (c *Config) applyMap(values map[string]string, prefix string) {
	keys := lo.Keys(values)
	slices.Sort(keys)
	for _, k := range keys {
		name, ok := strings.CutPrefix(k, prefix)
		if !ok {
			continue
		}
		if err := c.Set(name, values[k]); err != nil {
			c.Warnings = append(c.Warnings, err.Error())
		}
	}
}

// Set assigns one setting by its key name (VOLUME, SINK, ...). Unknown keys and
// malformed values return an error and leave the setting unchanged.
func (c *Config) Set(key, value string) error {
	key = strings.ToUpper(strings.TrimSpace(key))
	value = strings.TrimSpace(value)
	bad := func(err error) error { return fmt.Errorf("%s=%q: %v", key, value, err) }

	var err error
	switch key {
	case "VOLUME":
		err = setFloat(&c.Volume, value)
	case "VOLUME_POWER":
		err = setFloat(&c.VolumePower, value)
	case "MIN_VOLUME":
		err = setFloat(&c.MinVolume, value)
	case "MAX_VOLUME":
		err = setFloat(&c.MaxVolume, value)
	case "MIN_SAMPLE_RATE":
		err = setInt(&c.MinSampleRate, value)
	case "MAX_SAMPLE_RATE":
		err = setInt(&c.MaxSampleRate, value)
	case "SEEK_STEP":
		var secs float64
		if err = setFloat(&secs, value); err == nil {
			c.SeekStep = time.Duration(secs * float64(time.Second))
		}
	case "UPDATE_RATE_MS":
		err = setMillis(&c.UpdateRate, value)
	case "PROMPT_TIMEOUT_MS":
		err = setMillis(&c.PromptTimeout, value)
	case "WRAP_SELECTION":
		err = setBool(&c.WrapSelection, value)
	case "VISUALIZER":
		err = setBool(&c.Visualizer, value)
	case "VISUALIZER_MODE":
		var m visualizer.Mode
		if m, err = visualizer.ParseMode(value); err == nil {
			c.VisualizerMode = m
		}
	case "VISUALIZER_SCALAR":
		err = setFloat(&c.VisualizerScalar, value)
	case "SINK":
		var k sink.Kind
		if k, err = sink.ParseKind(value); err == nil {
			c.Sink = k
		}
	case "REPEAT":
		var m catalog.RepeatMode
		if m, err = catalog.ParseRepeat(value); err == nil {
			c.Repeat = m
		}
	case "SOCKET":
		c.Socket = value
	case "MPRIS":
		err = setBool(&c.MPRIS, value)
	case "LOG_FILE":
		c.LogFile = value
	case "LOG_LEVEL":
		err = c.LogLevel.UnmarshalText([]byte(value))
	default:
		return fmt.Errorf("unknown setting %s", key)
	}
	if err != nil {
		return bad(err)
	}
	return nil
}

// Normalize clamps every numeric setting into range. It never fails.
func (c *Config) Normalize() {
	if c.MinVolume < 0 {
		c.MinVolume = 0
	}
	if c.MaxVolume < c.MinVolume {
		c.MaxVolume = c.MinVolume
	}
	c.Volume = lo.Clamp(c.Volume, c.MinVolume, c.MaxVolume)
	if c.VolumePower <= 0 {
		c.VolumePower = defaults.VolumePower
	}

	c.MinSampleRate = max(c.MinSampleRate, 1)
	c.MaxSampleRate = max(c.MaxSampleRate, c.MinSampleRate)

	c.SeekStep = max(c.SeekStep, 0)
	if c.UpdateRate <= 0 {
		c.UpdateRate = defaults.UpdateRate
	}
	if c.PromptTimeout <= 0 {
		c.PromptTimeout = defaults.PromptTimeout
	}
	c.VisualizerScalar = max(c.VisualizerScalar, 0)
}

func setFloat(dst *float64, s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func setInt(dst *int, s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func setMillis(dst *time.Duration, s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = time.Duration(v) * time.Millisecond
	return nil
}

func setBool(dst *bool, s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// EnvFile is $XDG_CONFIG_HOME/kmp/kmp.env.
func EnvFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, defaults.AppName, defaults.AppName+".env")
}

func defaultSocket() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, defaults.SocketFile)
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("%s-%d.sock", defaults.AppName, os.Getuid()))
}

func defaultLogFile() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), defaults.AppName+".log")
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, defaults.AppName, defaults.AppName+".log")
}
