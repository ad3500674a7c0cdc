package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/reusee/dscope"
	"github.com/reusee/taibox/sessions"
	"golang.org/x/term"
)

// repl runs one session interactively. A line ending in ':' opens a block
// that an empty line closes. Piped input is run as a single snippet.
func repl(ctx context.Context, scope dscope.Scope) (code int) {
	scope.Call(func(
		manager *sessions.Manager,
	) {
		defer flushAudits(scope)
		session, err := manager.Create(ctx)
		if err != nil {
			fatal(err)
		}

		if !term.IsTerminal(int(os.Stdin.Fd())) {
			content, err := io.ReadAll(os.Stdin)
			if err != nil {
				fatal(err)
			}
			turn, err := manager.Run(ctx, session.ID, string(content))
			if err != nil {
				fatal(err)
			}
			printTurn(turn)
			if turn.Err != nil {
				code = 1
			}
			return
		}

		var historyFile string
		if home, err := os.UserHomeDir(); err == nil {
			historyFile = filepath.Join(home, ".taibox_history")
		}
		rl, err := readline.NewEx(&readline.Config{
			Prompt:      ">>> ",
			HistoryFile: historyFile,
		})
		if err != nil {
			fatal(err)
		}
		defer rl.Close()

		var block []string
		for {
			line, err := rl.Readline()
			if err != nil {
				// ctrl-c or ctrl-d
				break
			}
			if len(block) > 0 {
				if strings.TrimSpace(line) != "" {
					block = append(block, line)
					continue
				}
				line = strings.Join(block, "\n")
				block = nil
				rl.SetPrompt(">>> ")
			} else if strings.HasSuffix(strings.TrimSpace(line), ":") {
				block = append(block, line)
				rl.SetPrompt("... ")
				continue
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			turn, err := manager.Run(ctx, session.ID, line)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return
			}
			printTurn(turn)
		}
	})
	return
}
