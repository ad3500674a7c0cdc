package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/reusee/dscope"
	"github.com/reusee/e5"
	"github.com/reusee/taibox/boxconfigs"
	"github.com/reusee/taibox/cmds"
	"github.com/reusee/taibox/modes"
)

var (
	action string
	files  []string
)

var wrap = e5.Wrap.With(e5.WrapStacktrace)

func init() {
	cmds.Define("check", cmds.Func(func(args []string) {
		action, files = "check", args
	}).Args("FILE...").Desc("analyze snippet files without running them"))
	cmds.Define("run", cmds.Func(func(args []string) {
		action, files = "run", args
	}).Args("FILE...").Desc("run snippet files as turns of one session"))
	cmds.Define("repl", cmds.Func(func() {
		action = "repl"
	}).Desc("interactive session"))
	cmds.Define("serve", cmds.Func(func() {
		action = "serve"
	}).Desc("serve sessions over http, see -listen"))
	cmds.Define("version", cmds.Func(func() {
		fmt.Println(version)
		os.Exit(0)
	}).Desc("print version"))
}

const version = "taibox 0.1"

func main() {
	cmds.Execute(os.Args[1:])

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	scope := dscope.New(
		new(Module),
		modes.ForProduction(),
	)
	scope, err := boxconfigs.ScriptFork(scope)
	if err != nil {
		fatal(err)
	}

	var code int
	switch action {
	case "check":
		code = check(scope, files)
	case "run":
		code = run(ctx, scope, files)
	case "serve":
		code = serve(ctx, scope)
	case "repl":
		code = repl(ctx, scope)
	default:
		cmds.GlobalExecutor.PrintUsage()
		code = 2
	}
	cancel()
	os.Exit(code)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "%v\n", wrap(err))
	os.Exit(1)
}
