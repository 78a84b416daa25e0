package voice

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// ProbeMicrophone checks capture access by running a probe command once.
// With no probe configured access is assumed.
type ProbeMicrophone struct {
	probe string
	shell string

	mu   sync.Mutex
	held bool
}

// NewProbeMicrophone creates a microphone checked by probe (run via sh -c)
func NewProbeMicrophone(probe string) *ProbeMicrophone {
	return &ProbeMicrophone{probe: strings.TrimSpace(probe), shell: "sh"}
}

// Acquire runs the probe if the device is not already held
func (m *ProbeMicrophone) Acquire(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.held {
		return nil
	}
	if m.probe != "" {
		out, err := exec.CommandContext(ctx, m.shell, "-c", m.probe).CombinedOutput()
		if err != nil {
			return fmt.Errorf("microphone probe failed: %w: %s", err, strings.TrimSpace(string(out)))
		}
	}
	m.held = true
	return nil
}

// Release drops the held device
func (m *ProbeMicrophone) Release() {
	m.mu.Lock()
	m.held = false
	m.mu.Unlock()
}

// Held reports whether access has been granted and not released
func (m *ProbeMicrophone) Held() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held
}
