/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package defaults holds the tunables the player starts with. Every value can be
// overridden through internal/config.
package defaults

import "time"

const (
	// === IDENTITY ===
	AppName      = "kmp"
	VersionMajor = 1
	VersionMinor = 0

	// === VOLUME (1.0 == 100%) ===
	MaxVolume   = 1.2
	MinVolume   = 0.0
	Volume      = 0.15
	VolumePower = 3.0 // gain = volume^VolumePower

	// === SPEED ===
	MaxSampleRate = 666666
	MinSampleRate = 1000
	SpeedCoarse   = 1000 // Hz added per coarse speed key
	SpeedFine     = 100

	// === AUDIO ===
	MaxChunkFrames = 4096 // ceiling for one audio callback
	SinkBuffer     = 100 * time.Millisecond

	// === CONTROL ===
	SeekStep       = 5 * time.Second
	UpdateRate     = 200 * time.Millisecond
	PromptTimeout  = 5000 * time.Millisecond
	WrapSelection  = true
	PageStep       = 22
	SearchMaxLen   = 30
	JumpMaxLen     = 10
	VolumeStepFine = 0.01
	VolumeStepBig  = 0.05

	// === VISUALIZER ===
	DrawVisualizer   = false
	VisualizerMode   = "fft"
	VisualizerScalar = 9.0
	VisualizerHeight = 4

	// === TERMINAL ===
	MinTermWidth  = 11
	MinTermHeight = 11
	ListYPos      = 6

	// === REMOTE ===
	SocketFile = "kmp.sock"
	MPRISName  = "org.mpris.MediaPlayer2.kmp"
)

// SupportedFormats lists the file extensions the catalog accepts.
var SupportedFormats = []string{".flac", ".opus", ".mp3", ".ogg", ".wav", ".aif", ".aiff"}
