package main

import "github.com/oshokin/owner-guard/cmd/owner-ctl/cmd"

func main() {
	cmd.Execute()
}
