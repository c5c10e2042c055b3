package main

import (
	"fmt"
	"os"

	tool "github.com/sandeepkv93/debt-ledger-service/internal/tools/seed"
)

func main() {
	if err := tool.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(3)
	}
}
