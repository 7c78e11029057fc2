package main

import (
	"github.com/pmkol/poollist/coremain"
	"github.com/pmkol/poollist/mlog"
)

func main() {
	if err := coremain.Run(); err != nil {
		mlog.S().Fatal(err)
	}
}
