package main

import "github.com/vukdaten/volksfeste/internal/cli"

func main() {
	cli.Execute()
}
