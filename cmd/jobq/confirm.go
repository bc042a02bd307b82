package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// confirm prompts the operator with a yes/no question and reads a
// single line of response. Anything starting with 'y' (case
// insensitive) counts as confirmation.
func confirm(out io.Writer, in *bufio.Reader, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	line, _ := in.ReadString('\n')
	line = strings.ToLower(strings.TrimSpace(line))
	return strings.HasPrefix(line, "y")
}
