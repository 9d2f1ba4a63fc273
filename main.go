package main

import (
	"github.com/duxnet-project/duxnet/cmd/duxnet"
	_ "github.com/duxnet-project/duxnet/pkg/logger"
	"github.com/duxnet-project/duxnet/pkg/version"
)

func main() {
	duxnet.Execute(version.Get().GitVersion)
}
