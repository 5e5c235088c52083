package display

import (
	"bufio"
	"io"
)

// WriteLines writes rendered lines to w, styled when color is set.
func WriteLines(w io.Writer, lines []StyledLine, styles Styles, color bool) error {
	bw := bufio.NewWriter(w)
	for _, line := range lines {
		text := line.Text
		if color {
			text = styles.Render(line)
		}
		if _, err := bw.WriteString(text + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
