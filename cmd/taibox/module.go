package main

import (
	"github.com/reusee/dscope"
	"github.com/reusee/taibox/apis"
	"github.com/reusee/taibox/boxconfigs"
	"github.com/reusee/taibox/landlocks"
	"github.com/reusee/taibox/logs"
)

type Module struct {
	dscope.Module
	APIs      apis.Module
	Configs   boxconfigs.Module
	Landlocks landlocks.Module
	Logs      logs.Module
}
