package cli

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/geofilter/geofilter/geofilter"
)

const (
	red    = "\x1b[31m"
	green  = "\x1b[32m"
	yellow = "\x1b[33m"
	reset  = "\x1b[0m"
)

func info(format string, a ...any) {
	fmt.Printf(green+format+reset+"\n", a...)
}

func result(format string, a ...any) {
	fmt.Printf(yellow+format+reset+"\n", a...)
}

func warn(err error) {
	fmt.Fprintf(os.Stderr, "%s%v%s\n", red, err, reset)
}

func printResource(w io.Writer, res geofilter.Resource) {
	keys := make([]string, 0, len(res))
	for k := range res {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s = %s\n", k, res[k])
	}
}
