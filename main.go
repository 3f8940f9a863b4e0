package main

import (
	"musewave/cmd"
)

func main() {
	cmd.Execute()
}
