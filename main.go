package main

import "github.com/KaramelBytes/staffclean-cli/cmd"

func main() {
	cmd.Execute()
}
