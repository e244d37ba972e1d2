package main

import "github.com/oshokin/spm-release/cmd/spm-release/cmd"

func main() {
	cmd.Execute()
}
