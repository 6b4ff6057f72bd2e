package main

import (
	"github.com/masmgr/codestat/cmd"
)

func main() {
	cmd.Run()
}
