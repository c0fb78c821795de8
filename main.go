package main

import "github.com/jvmtools/gctriage/cmd"

func main() {
	cmd.Execute()
}
