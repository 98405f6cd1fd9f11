package main

import "github.com/naka-gawa/timesheet/cmd"

func main() {
	cmd.Execute()
}
