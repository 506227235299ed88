package main

import "github.com/AzielCF/az-storage/cmd"

func main() {
	cmd.Execute()
}
