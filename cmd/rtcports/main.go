package main

import "rtcports/internal/cli"

func main() {
	cli.Execute()
}
