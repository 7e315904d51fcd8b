package main

import cmd "github.com/rohmanhakim/lazyload/internal/cli"

func main() {
	cmd.Execute()
}
