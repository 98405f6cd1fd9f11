// Package publish commits generated reports back to the repository they were written into.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

const (
	botName    = "github-actions[bot]"
	botEmail   = "41898282+github-actions[bot]@users.noreply.github.com"
	botAuthor  = botName + " <" + botEmail + ">"
	commitText = "Update Files"
)

// Runner runs git with args inside dir and returns its trimmed standard output.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// GitRunner runs the git binary found on PATH.
type GitRunner struct{}

func (GitRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Publisher stages, commits and pushes files as the GitHub Actions bot.
type Publisher struct {
	runner Runner
	dir    string
	logger *zap.Logger
}

// NewPublisher creates a Publisher working in dir. A nil runner uses GitRunner.
func NewPublisher(dir string, runner Runner, logger *zap.Logger) *Publisher {
	if runner == nil {
		runner = GitRunner{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{runner: runner, dir: dir, logger: logger}
}

// OriginURL returns the URL of the origin remote of the working copy.
func (p *Publisher) OriginURL(ctx context.Context) (string, error) {
	out, err := p.runner.Run(ctx, p.dir, "config", "--get", "remote.origin.url")
	if err != nil {
		return "", fmt.Errorf("failed to read origin url: %w", err)
	}
	return out, nil
}

// Publish commits files and pushes them to branch on origin.
func (p *Publisher) Publish(ctx context.Context, branch string, files []string) error {
	if len(files) == 0 {
		p.logger.Info("nothing to publish")
		return nil
	}

	steps := []struct {
		name string
		args []string
	}{
		{"configure user name", []string{"config", "user.name", botName}},
		{"configure user email", []string{"config", "user.email", botEmail}},
		{"stage files", append([]string{"add", "--force"}, files...)},
		{"commit files", []string{"commit", "--message", commitText, "--author", botAuthor}},
		{"push to " + branch, []string{"push", "origin", branch}},
	}

	for _, step := range steps {
		if _, err := p.runner.Run(ctx, p.dir, step.args...); err != nil {
			return fmt.Errorf("failed to %s: %w", step.name, err)
		}
	}

	p.logger.Info("reports published", zap.String("branch", branch), zap.Int("files", len(files)))
	return nil
}
