package main

import (
	"os"
)

func main() {
	os.Exit(executeRoot(newRootCmd()))
}
