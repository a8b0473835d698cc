/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"kmp/internal/catalog"
	"kmp/internal/config"
	"kmp/internal/player"
	"kmp/internal/remote"
	"kmp/internal/sink"
	"kmp/internal/ui"
	"kmp/internal/visualizer"
	"kmp/pkg/audioengine"
	"kmp/pkg/defaults"
)

type Params struct {
	Files      []string              `pos:"true" optional:"true" help:"Tracks to play. When none are given, paths are read from standard input."`
	Config     boa.Optional[string]  `short:"c" help:"Env file with KMP_ settings (default $XDG_CONFIG_HOME/kmp/kmp.env)"`
	Volume     boa.Optional[float64] `help:"Start volume, 1.0 is 100%"`
	Repeat     boa.Optional[string]  `short:"r" help:"Repeat mode: none, track or playlist"`
	Sink       boa.Optional[string]  `help:"Audio output: speaker, portaudio or null"`
	Visualizer boa.Optional[bool]    `help:"Show the visualizer at start"`
	Mpris      boa.Optional[bool]    `help:"Export the player on the D-Bus session bus"`
	Socket     boa.Optional[string]  `help:"Path of the control socket"`
	LogFile    boa.Optional[string]  `help:"Log destination"`
	LogLevel   boa.Optional[string]  `help:"debug, info, warn or error"`
}

// overrides returns the flags the user actually passed, keyed like the env file.
func (p *Params) overrides() map[string]string {
	out := map[string]string{}
	str := func(key string, o boa.Optional[string]) {
		if o.HasValue() {
			out[key] = *o.Value()
		}
	}
	flag := func(key string, o boa.Optional[bool]) {
		if o.HasValue() {
			out[key] = strconv.FormatBool(*o.Value())
		}
	}
	if p.Volume.HasValue() {
		out["VOLUME"] = strconv.FormatFloat(*p.Volume.Value(), 'f', -1, 64)
	}
	str("REPEAT", p.Repeat)
	str("SINK", p.Sink)
	str("SOCKET", p.Socket)
	str("LOG_FILE", p.LogFile)
	str("LOG_LEVEL", p.LogLevel)
	flag("VISUALIZER", p.Visualizer)
	flag("MPRIS", p.Mpris)
	return out
}

func main() {
	boa.CmdT[Params]{
		Use:     defaults.AppName + " [files...]",
		Short:   "Terminal music player",
		Version: fmt.Sprintf("%d.%d", defaults.VersionMajor, defaults.VersionMinor),
		Long: "Plays the given tracks (or newline separated paths from stdin) with a keyboard driven " +
			"terminal interface. Settings come from " + config.EnvFile() + ", KMP_* variables and flags.",
		ParamEnrich: boa.ParamEnricherCombine(
			boa.ParamEnricherBool,
			boa.ParamEnricherName,
			boa.ParamEnricherShort,
		),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			inv := invocation{Files: params.Files, EnvFile: config.EnvFile(), Overrides: params.overrides()}
			if params.Config.HasValue() {
				inv.EnvFile = *params.Config.Value()
			}
			os.Exit(run(inv, os.Stdin, os.Stderr))
		},
	}.Run()
}

// invocation is the command line after flag parsing.
type invocation struct {
	Files     []string
	EnvFile   string
	Overrides map[string]string
}

func run(inv invocation, stdin *os.File, stderr io.Writer) int {
	cfg, err := config.Load(inv.EnvFile, os.Environ())
	if err != nil {
		fmt.Fprintf(stderr, "kmp: %v\n", err)
		return 1
	}
	for key, value := range inv.Overrides {
		if err := cfg.Set(key, value); err != nil {
			fmt.Fprintf(stderr, "kmp: %v\n", err)
			return 1
		}
	}
	cfg.Normalize()

	log, closeLog := openLog(cfg, stderr)
	defer closeLog()
	for _, w := range cfg.Warnings {
		log.Warn("config value ignored", "detail", w)
	}

	var list io.Reader
	if len(inv.Files) == 0 && !term.IsTerminal(int(stdin.Fd())) {
		list = stdin
	}
	cat, err := catalog.Load(inv.Files, list, defaults.SupportedFormats)
	if err != nil {
		if errors.Is(err, catalog.ErrNoTracks) {
			fmt.Fprintln(stderr, "kmp: no playable tracks")
		} else {
			fmt.Fprintf(stderr, "kmp: %v\n", err)
		}
		return 1
	}
	cat.Repeat = cfg.Repeat
	cat.Wrap = cfg.WrapSelection

	p, err := player.New(player.Options{
		Opener:        audioengine.NewRegistry(),
		Sinks:         sink.New(cfg.Sink, defaults.SinkBuffer),
		Catalog:       cat,
		Logger:        log,
		Volume:        cfg.Volume,
		Muted:         cfg.Volume == 0,
		MinVolume:     cfg.MinVolume,
		MaxVolume:     cfg.MaxVolume,
		VolumePower:   cfg.VolumePower,
		MinSampleRate: cfg.MinSampleRate,
		MaxSampleRate: cfg.MaxSampleRate,
	})
	if err != nil {
		fmt.Fprintf(stderr, "kmp: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startRemote(ctx, cfg, p, log)

	played := make(chan error, 1)
	go func() { played <- p.Run(ctx) }()

	if err := runUI(ctx, cfg, p, log); err != nil {
		log.Warn("no terminal, running headless", "error", err)
		<-p.Done()
	}
	p.Quit()

	if err := <-played; err != nil {
		log.Error("playback failed", "error", err)
		fmt.Fprintf(stderr, "kmp: %v\n", err)
		return 1
	}
	return 0
}

// openLog points slog at the log file. The terminal belongs to the UI, so a log file
// that cannot be opened means logs are discarded.
func openLog(cfg config.Config, stderr io.Writer) (*slog.Logger, func()) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err == nil {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			log := slog.New(slog.NewTextHandler(f, opts))
			slog.SetDefault(log)
			return log, func() { f.Close() }
		}
	}
	fmt.Fprintf(stderr, "kmp: cannot open log file %s, logging disabled\n", cfg.LogFile)
	log := slog.New(slog.NewTextHandler(io.Discard, opts))
	slog.SetDefault(log)
	return log, func() {}
}

// startRemote brings up the socket and MPRIS bridges. Either one failing only
// disables that bridge.
func startRemote(ctx context.Context, cfg config.Config, p *player.Player, log *slog.Logger) {
	if cfg.Socket != "" {
		sock := remote.NewSocket(cfg.Socket, p, log)
		if ln, err := sock.Listen(); err != nil {
			log.Warn("control socket disabled", "path", cfg.Socket, "error", err)
		} else {
			go func() {
				if err := sock.Serve(ctx, ln); err != nil {
					log.Warn("control socket stopped", "error", err)
				}
			}()
		}
	}

	if cfg.MPRIS {
		m, err := remote.StartMPRIS(ctx, defaults.MPRISName, p, log)
		if err != nil {
			log.Warn("mpris disabled", "error", err)
			return
		}
		go func() {
			<-p.Done()
			m.Close()
		}()
	}
}

func runUI(ctx context.Context, cfg config.Config, p *player.Player, log *slog.Logger) error {
	t, err := ui.OpenTerminal()
	if err != nil {
		return err
	}
	defer t.Close()

	resize, stopResize := ui.ResizeEvents()
	defer stopResize()

	w, h := t.Size()
	gate := ui.NewGate(t.Out(), w, h)
	gate.SetVisualizer(cfg.Visualizer)

	app := &ui.App{
		Ctl:           p,
		Gate:          gate,
		Keys:          t.Keys(ctx),
		Resize:        resize,
		Size:          t.Size,
		Sampler:       visualizer.Sampler{Mode: cfg.VisualizerMode, Scalar: cfg.VisualizerScalar},
		Log:           log,
		SeekStep:      cfg.SeekStep,
		UpdateRate:    cfg.UpdateRate,
		PromptTimeout: cfg.PromptTimeout,
	}
	return app.Run(ctx)
}
