/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"kmp/internal/config"
	"kmp/internal/remote"
	"kmp/pkg/defaults"
)

var verbs = []string{
	"ABOUT", "PING", "WHOAMI", "STATUS", "LIST",
	"PLAY", "PAUSE", "RESUME", "TOGGLE", "NEXT", "PREV", "STOP", "QUIT",
	"MUTE", "VOLUME", "SEEK", "REPEAT", "SPEED",
}

type Params struct {
	Command []string             `pos:"true" optional:"true" help:"Command to send, e.g. 'seek 1:30'. Interactive when empty."`
	Socket  boa.Optional[string] `short:"s" help:"Control socket of the running player"`
}

func main() {
	boa.CmdT[Params]{
		Use:   "kmp-ctl [command...]",
		Short: "Remote control for a running kmp",
		ParamEnrich: boa.ParamEnricherCombine(
			boa.ParamEnricherBool,
			boa.ParamEnricherName,
			boa.ParamEnricherShort,
		),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			os.Exit(run(params))
		},
	}.Run()
}

func socketPath(params *Params) string {
	if params.Socket.HasValue() {
		return *params.Socket.Value()
	}
	cfg, err := config.Load(config.EnvFile(), os.Environ())
	if err != nil {
		return config.Default().Socket
	}
	return cfg.Socket
}

func run(params *Params) int {
	path := socketPath(params)
	c, err := remote.Dial(path, 2*time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kmp-ctl: cannot reach %s: %v\n", path, err)
		return 1
	}
	defer c.Close()

	if len(params.Command) > 0 {
		reply, err := c.Do(strings.Join(params.Command, " "))
		if err != nil {
			fmt.Fprintf(os.Stderr, "kmp-ctl: %v\n", err)
			return 1
		}
		fmt.Println(reply)
		return 0
	}
	return interactive(c)
}

func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, defaults.AppName, "ctl_history")
}

func completer() *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(verbs))
	for _, v := range verbs {
		items = append(items, readline.PcItem(v))
	}
	return readline.NewPrefixCompleter(items...)
}

// interactive prints every line the player sends, events included, while the user
// types commands.
func interactive(c *remote.Client) int {
	if h := historyFile(); h != "" {
		os.MkdirAll(filepath.Dir(h), 0o755)
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:       defaults.AppName + "> ",
		HistoryFile:  historyFile(),
		AutoComplete: completer(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "kmp-ctl: %v\n", err)
		return 1
	}
	defer rl.Close()

	fmt.Fprintf(rl.Stdout(), "connected, type EXIT to leave\n")

	go func() {
		for {
			line, err := c.ReadLine()
			if err != nil {
				fmt.Fprintln(rl.Stdout(), "socket closed")
				rl.Close()
				return
			}
			fmt.Fprintln(rl.Stdout(), line)
		}
	}()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "EXIT") {
			break
		}
		if err := c.Send(line); err != nil {
			fmt.Fprintf(os.Stderr, "kmp-ctl: %v\n", err)
			return 1
		}
	}
	return 0
}
