package main

import "github.com/xrsl/jobpilot/cmd"

func main() {
	cmd.Execute()
}
