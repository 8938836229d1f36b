package main

import "github.com/genomics-tools/datacheck/cmd"

func main() {
	cmd.Execute()
}
