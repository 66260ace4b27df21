package main

import "github.com/killallgit/sheetfreak/cmd"

func main() {
	cmd.Execute()
}
