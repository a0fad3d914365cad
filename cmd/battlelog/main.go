// Package main is the entry point for battlelog.
package main

import "github.com/j-veylop/tower-battlelog/internal/cli"

func main() {
	cli.Execute()
}
