package main

import "github.com/example/staycal/cmd"

func main() {
	cmd.Execute()
}
