package main

import "github.com/ivannaranjo/gmedia/cmd"

func main() {
	cmd.Execute()
}
