package main

import "github.com/hoppxi/framekit/internal/cmd"

func main() {
	cmd.Execute()
}
