package main

import "github.com/erensaridag/careermatch/cmd"

func main() {
	cmd.Execute()
}
