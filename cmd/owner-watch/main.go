package main

import "github.com/oshokin/owner-guard/cmd/owner-watch/cmd"

func main() {
	cmd.Execute()
}
