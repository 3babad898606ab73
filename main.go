// Package main is the entry point for the allsky application
package main

import (
	"github.com/auroralab/allsky/cmd"
)

func main() {
	cmd.Execute()
}
