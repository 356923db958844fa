package main

import "github.com/mselser95/triarb-tracker/cmd"

func main() {
	cmd.Execute()
}
