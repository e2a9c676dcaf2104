// Package commandtest provides a scriptable command.Runner for tests.
package commandtest

import (
	"context"
	"strings"
	"sync"

	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/command"
)

type Handler func(cmd command.Command) (string, error)

// FakeRunner records every command and answers with the first handler whose
// prefix matches the command line.
type FakeRunner struct {
	mu       sync.Mutex
	Commands []command.Command
	handlers []handlerEntry
}

type handlerEntry struct {
	prefix  string
	handler Handler
}

func NewFakeRunner() *FakeRunner {
	return &FakeRunner{}
}

func (f *FakeRunner) On(prefix string, handler Handler) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers = append(f.handlers, handlerEntry{prefix: prefix, handler: handler})
	return f
}

func (f *FakeRunner) Execute(_ context.Context, cmd command.Command) (string, error) {
	f.mu.Lock()
	f.Commands = append(f.Commands, cmd)
	handlers := f.handlers
	f.mu.Unlock()
	line := cmd.String()
	for _, h := range handlers {
		if strings.HasPrefix(line, h.prefix) {
			return h.handler(cmd)
		}
	}
	return "", nil
}

// Lines returns the recorded command lines.
func (f *FakeRunner) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, 0, len(f.Commands))
	for _, cmd := range f.Commands {
		lines = append(lines, cmd.String())
	}
	return lines
}

func Fail(err error) Handler {
	return func(command.Command) (string, error) { return "", err }
}

func Output(output string) Handler {
	return func(command.Command) (string, error) { return output, nil }
}
