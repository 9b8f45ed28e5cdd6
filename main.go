package main

import (
	"os"

	"github.com/ychen306/llvm-merge/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
