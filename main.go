package main

import "github.com/vpoint-tv/vpoint-api/cmd"

func main() {
	cmd.Execute()
}
