package main

import "github.com/KaramelBytes/filmcorr-cli/cmd"

func main() {
	cmd.Execute()
}
