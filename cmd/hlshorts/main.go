package main

import "github.com/forPelevin/hlshorts/internal/cli"

func main() {
	cli.Main()
}
