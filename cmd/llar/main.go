package main

import "github.com/goplus/llar-folly/cmd/llar/internal"

func main() {
	internal.Execute()
}
