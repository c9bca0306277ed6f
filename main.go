package main

import "github.com/skcc-wooyoungmoon/agentframework-sub012/cmd"

func main() {
	cmd.Execute()
}
