// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"bytes"
	"strings"
	"sync"
)

// SafeBuffer is an io.Writer that tests can read while a run, a watcher
// or a worker pool is still writing to it.
type SafeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *SafeBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *SafeBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// Lines returns the non-empty lines written so far.
func (s *SafeBuffer) Lines() []string {
	var lines []string
	for _, l := range strings.Split(s.String(), "\n") {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
