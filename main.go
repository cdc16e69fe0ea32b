package main

import "github.com/theirongolddev/edcost/cmd"

func main() {
	cmd.Execute()
}
