package main

import "github.com/tanq16/printgrab/cmd"

func main() {
	cmd.Execute()
}
