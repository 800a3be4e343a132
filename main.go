package main

import "civic-issues-be/cmd"

func main() {
	cmd.Execute()
}
