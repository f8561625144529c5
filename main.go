package main

import "github.com/KaramelBytes/citypulse-cli/cmd"

func main() {
	cmd.Execute()
}
