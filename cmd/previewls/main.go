// previewls lists the time-aligned preview set of a directory.
//
// Usage: previewls [dir]
package main

import (
	"fmt"
	"os"

	"github.com/eyetrace/preview/pkg/preview"
)

func main() {
	dir := "preview"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	set, err := preview.LoadAll(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "previewls: %v\n", err)
		os.Exit(1)
	}
	if len(set) == 0 {
		fmt.Printf("No previews found in %q.\n", dir)
		return
	}

	fmt.Printf("%d aligned preview tuple(s) in %q\n\n", len(set), dir)
	for i, tuple := range set {
		fmt.Printf("#%d", i+1)
		for _, record := range tuple {
			fmt.Printf("  eye%d frame %-6d conf %.4f", record.Eye, record.Frame, record.Confidence)
		}
		fmt.Println()
	}
}
