package contexts

import (
	"bufio"
	"fmt"
	"io"
)

// Write emits contexts as 1-indexed "--- Chunk N ---" blocks.
func Write(w io.Writer, ctxs []string) error {
	bw := bufio.NewWriter(w)
	for i, c := range ctxs {
		if _, err := fmt.Fprintf(bw, "--- Chunk %d ---\n%s\n\n", i+1, c); err != nil {
			return fmt.Errorf("write chunk %d: %w", i+1, err)
		}
	}
	return bw.Flush()
}
