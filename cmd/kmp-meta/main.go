/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/spf13/cobra"

	"kmp/pkg/audioengine"
)

type Params struct {
	Files []string `pos:"true" required:"true" help:"Audio files to inspect."`
	JSON  bool     `short:"j" optional:"true" help:"Dump one JSON object per file."`
}

type trackInfo struct {
	Path       string  `json:"path"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Album      string  `json:"album"`
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
	Frames     uint64  `json:"frames"`
	Duration   float64 `json:"duration"`
	Size       int64   `json:"size"`
}

func main() {
	boa.CmdT[Params]{
		Use:   "kmp-meta <files...>",
		Short: "Print the tags and stream format of audio files",
		ParamEnrich: boa.ParamEnricherCombine(
			boa.ParamEnricherBool,
			boa.ParamEnricherName,
			boa.ParamEnricherShort,
		),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			os.Exit(run(params, audioengine.NewRegistry(), os.Stdout, os.Stderr))
		},
	}.Run()
}

func run(params *Params, opener audioengine.Opener, stdout, stderr io.Writer) int {
	code := 0
	for _, path := range params.Files {
		info, err := inspect(opener, path)
		if err != nil {
			fmt.Fprintf(stderr, "kmp-meta: %s: %v\n", path, err)
			code = 1
			continue
		}
		if params.JSON {
			j, _ := json.Marshal(info)
			fmt.Fprintln(stdout, string(j))
			continue
		}
		printInfo(stdout, info)
	}
	return code
}

func inspect(opener audioengine.Opener, path string) (trackInfo, error) {
	dec, t, err := opener.Open(path)
	if err != nil {
		return trackInfo{}, err
	}
	dec.Close()

	info := trackInfo{
		Path:       path,
		Title:      t.Title,
		Artist:     t.Artist,
		Album:      t.Album,
		SampleRate: t.SampleRate,
		Channels:   t.Channels,
		Frames:     t.FrameCount,
		Duration:   t.Duration().Seconds(),
	}
	if st, err := os.Stat(path); err == nil {
		info.Size = st.Size()
	}
	return info, nil
}

func printInfo(w io.Writer, info trackInfo) {
	d := time.Duration(info.Duration * float64(time.Second)).Round(time.Second)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, " FILE          : %s\n", info.Path)
	fmt.Fprintf(w, " TITLE         : %s\n", info.Title)
	fmt.Fprintf(w, " ARTIST        : %s\n", info.Artist)
	fmt.Fprintf(w, " ALBUM         : %s\n", info.Album)
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, " SAMPLE RATE   : %d Hz\n", info.SampleRate)
	fmt.Fprintf(w, " CHANNELS      : %d\n", info.Channels)
	fmt.Fprintf(w, " DURATION      : %02d:%02d\n", int(d.Minutes()), int(d.Seconds())%60)
	fmt.Fprintf(w, " SIZE          : %s\n", formatSize(info.Size))
	fmt.Fprintln(w, strings.Repeat("=", 60))
}

func formatSize(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(b)/float64(div), "KMGT"[exp])
}
