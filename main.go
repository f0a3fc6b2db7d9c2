package main

import "github.com/KaramelBytes/meshstats-cli/cmd"

func main() {
	cmd.Execute()
}
