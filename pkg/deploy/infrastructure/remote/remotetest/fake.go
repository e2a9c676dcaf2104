// Package remotetest provides an in-memory remote.Shell for stage tests.
package remotetest

import (
	"context"
	"strings"
	"sync"
)

type Copy struct {
	Local     string
	Remote    string
	Recursive bool
}

type Handler func(script string) (string, error)

// FakeShell records scripts, copies and written files. Scripts are answered
// by the first registered handler whose prefix matches; unmatched scripts
// succeed with empty output.
type FakeShell struct {
	mu       sync.Mutex
	Scripts  []string
	Copies   []Copy
	Files    map[string]string
	CopyErr  error
	handlers []handlerEntry
}

type handlerEntry struct {
	prefix  string
	handler Handler
}

func NewFakeShell() *FakeShell {
	return &FakeShell{Files: map[string]string{}}
}

func (f *FakeShell) On(prefix string, handler Handler) *FakeShell {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers = append(f.handlers, handlerEntry{prefix: prefix, handler: handler})
	return f
}

func (f *FakeShell) Run(_ context.Context, script string) (string, error) {
	f.mu.Lock()
	f.Scripts = append(f.Scripts, script)
	handlers := f.handlers
	f.mu.Unlock()
	for _, h := range handlers {
		if strings.HasPrefix(script, h.prefix) {
			return h.handler(script)
		}
	}
	return "", nil
}

func (f *FakeShell) Copy(_ context.Context, localPath, remotePath string, recursive bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CopyErr != nil {
		return f.CopyErr
	}
	f.Copies = append(f.Copies, Copy{Local: localPath, Remote: remotePath, Recursive: recursive})
	return nil
}

func (f *FakeShell) WriteFile(_ context.Context, content []byte, remotePath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Files[remotePath] = string(content)
	return nil
}

// Ran reports whether a script starting with prefix was executed.
func (f *FakeShell) Ran(prefix string) bool {
	return f.Count(prefix) > 0
}

func (f *FakeShell) Count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, script := range f.Scripts {
		if strings.HasPrefix(script, prefix) {
			n++
		}
	}
	return n
}

// Index returns the position of the first script starting with prefix, or -1.
func (f *FakeShell) Index(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, script := range f.Scripts {
		if strings.HasPrefix(script, prefix) {
			return i
		}
	}
	return -1
}

func Fail(err error) Handler {
	return func(string) (string, error) { return "", err }
}

func Output(output string) Handler {
	return func(string) (string, error) { return output, nil }
}
