package main

import "github.com/OpenTraceLab/OpenTraceFCD/cmd/fcd/cmd"

func main() {
	cmd.Execute()
}
