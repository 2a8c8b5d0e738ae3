package notify

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Console writes notices to w, stdout by default. The output is for humans;
// the flat health log is the stable, parseable record.
type Console struct {
	W io.Writer
}

func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{W: w}
}

func (c *Console) Send(ctx context.Context, title, text string) error {
	_, err := fmt.Fprintf(c.W, "%s %s\n", title, text)
	return err
}
