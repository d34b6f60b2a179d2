package main

import "github.com/KaramelBytes/bcgmatrix-cli/cmd"

func main() {
	cmd.Execute()
}
