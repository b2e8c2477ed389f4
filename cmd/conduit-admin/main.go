package main

import "github.com/conduitllm/admin/cmd/conduit-admin/cmd"

func main() {
	cmd.Execute()
}
