package main

import "github.com/RoyceAzure/lab/parkeat/internal/cmd"

func main() {
	cmd.Execute()
}
