package main

import (
	"context"
	"fmt"
	"os"

	"github.com/reusee/dscope"
	"github.com/reusee/taibox/runners"
	"github.com/reusee/taibox/sessions"
)

// check analyzes files without running them and prints one line per
// rejected file.
func check(scope dscope.Scope, files []string) (code int) {
	scope.Call(func(
		runner *runners.Runner,
	) {
		for _, path := range files {
			content, err := os.ReadFile(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
				code = 1
				continue
			}
			if _, _, err := runner.Prepare(string(content)); err != nil {
				fmt.Printf("%s: %s: %v\n", path, runners.ErrorKind(err), err)
				code = 1
				continue
			}
			fmt.Printf("%s: ok\n", path)
		}
	})
	return
}

// run runs files in order as turns of one session, the way an agent would
// send them.
func run(ctx context.Context, scope dscope.Scope, files []string) (code int) {
	scope.Call(func(
		manager *sessions.Manager,
	) {
		defer flushAudits(scope)
		session, err := manager.Create(ctx)
		if err != nil {
			fatal(err)
		}
		for _, path := range files {
			content, err := os.ReadFile(path)
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
				return
			}
		}
	})
	return
}

func printTurn(turn sessions.Turn) {
	if turn.Display != "" {
		fmt.Print(turn.Display)
	}
	obs := turn.Observation()
	if turn.Err != nil {
		fmt.Fprintln(os.Stderr, obs)
		return
	}
	if obs == "" {
		return
	}
	fmt.Print(obs)
	if obs[len(obs)-1] != '\n' {
		fmt.Println()
	}
}
