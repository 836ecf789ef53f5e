package execagent

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"uicapture/internal/core/ports"
)

// Agent runs an external agent binary once per task.
type Agent struct {
	binaryPath  string
	taskTimeout time.Duration
	logger      *log.Logger
}

// NewAgent creates a new subprocess agent. binaryPath may be a bare name
// resolved through PATH.
func NewAgent(binaryPath string, taskTimeout time.Duration, logger *log.Logger) *Agent {
	return &Agent{
		binaryPath:  binaryPath,
		taskTimeout: taskTimeout,
		logger:      logger,
	}
}

// Initialize checks that the agent binary can be run.
func (a *Agent) Initialize(ctx context.Context, headless bool) (ports.Session, error) {
	path, err := exec.LookPath(a.binaryPath)
	if err != nil {
		return nil, fmt.Errorf("agent binary %q not found: %w", a.binaryPath, err)
	}
	a.logger.Printf("Using agent binary %s (headless=%t)", path, headless)
	return &session{agent: a, path: path, headless: headless}, nil
}

type session struct {
	agent    *Agent
	path     string
	headless bool

	mu     sync.Mutex
	closed bool
}

// ExecuteTask runs `<bin> run --task ... --url ... --max-steps N [--headless]`.
// The last non-empty line printed on stdout is the manifest path.
func (s *session) ExecuteTask(ctx context.Context, req ports.TaskRequest) (string, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return "", fmt.Errorf("agent session is closed")
	}

	if s.agent.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.agent.taskTimeout)
		defer cancel()
	}

	args := []string{
		"run",
		"--task", req.Description,
		"--url", req.StartURL,
		"--max-steps", strconv.Itoa(req.MaxSteps),
	}
	if s.headless {
		args = append(args, "--headless")
	}
	cmd := exec.CommandContext(ctx, s.path, args...)

	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("agent failed: %w, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	manifest := lastLine(out.String())
	if manifest == "" {
		return "", fmt.Errorf("agent returned no manifest path")
	}
	return manifest, nil
}

// Close marks the session closed. The agent process exits after each task,
// so there is nothing else to release.
func (s *session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
