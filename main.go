package main

import (
	"github/caspercreds/go-deploy/cmd"
)

func main() {
	cmd.Execute()
}
