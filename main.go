package main

import "github.com/philipparndt/golitho/internal/cmd"

func main() {
	cmd.Parse()
}
