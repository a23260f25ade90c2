// Package main implements memfmt_err - lists the library error codes and their descriptions.
package main

import (
	"fmt"
	"io"
	"os"

	"memfmt/internal/common"
	"memfmt/internal/dbg"
)

func printErrorList(w io.Writer) {
	fmt.Fprintln(w, "memfmt Error Code List")
	fmt.Fprintln(w)
	for code := dbg.OK; code < dbg.ErrLast; code++ {
		name, msg, ok := common.ErrorCodeName(code)
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%d: %s - %s\n", code, name, msg)
	}
}

func main() {
	printErrorList(os.Stdout)
}
