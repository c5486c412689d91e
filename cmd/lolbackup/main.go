// Package main is the entry point for lolbackup.
package main

import (
	"github.com/kemukujara/lolbackup/internal/cli"
)

func main() {
	cli.Execute()
}
