package main

import "github.com/mfriesen42/autopull/cmd"

func main() {
	cmd.Execute()
}
