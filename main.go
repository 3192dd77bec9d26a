package main

import "github.com/vibast-solutions/ms-go-nutrition/cmd"

func main() {
	cmd.Execute()
}
