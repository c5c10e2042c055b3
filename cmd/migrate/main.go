package main

import (
	"fmt"
	"os"

	tool "github.com/sandeepkv93/debt-ledger-service/internal/tools/migrate"
)

func main() {
	if err := tool.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(3)
	}
}
