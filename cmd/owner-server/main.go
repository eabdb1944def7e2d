package main

import "github.com/oshokin/owner-guard/cmd/owner-server/cmd"

func main() {
	cmd.Execute()
}
