package main

import "github.com/mouse-blink/scenario/cmd"

func main() {
	cmd.Execute()
}
