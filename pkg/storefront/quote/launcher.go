package quote

import (
	"context"
	"fmt"
	"io"
)

// Launcher opens the messaging deep link.
type Launcher interface {
	Launch(ctx context.Context, link string) error
}

type LauncherFunc func(ctx context.Context, link string) error

func (f LauncherFunc) Launch(ctx context.Context, link string) error {
	return f(ctx, link)
}

// WriterLauncher prints the link, for terminals and logs.
type WriterLauncher struct {
	W io.Writer
}

func (l WriterLauncher) Launch(_ context.Context, link string) error {
	_, err := fmt.Fprintln(l.W, link)
	return err
}
