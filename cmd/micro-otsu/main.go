package main

import "micro-otsu/internal/cli"

func main() {
	cli.Execute()
}
