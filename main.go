package main

import (
	"github.com/Ifihan/briefen-me/cmd"
	_ "github.com/Ifihan/briefen-me/cmd/cli"
	_ "github.com/Ifihan/briefen-me/cmd/server"
)

func main() {
	cmd.Execute()
}
