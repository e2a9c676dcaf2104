package command

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Command struct {
	WorkDir    string
	Executable string
	Args       []string
	Env        []string
	Stdin      []byte
	// Shell runs the command through the Windows command interpreter.
	Shell bool
	// Verbose streams output to the terminal instead of capturing it.
	Verbose bool
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Executable}, c.Args...), " ")
}

type Runner interface {
	Execute(ctx context.Context, command Command) (string, error)
}

func NewCommandRunner(logger logrus.FieldLogger) Runner {
	return &runner{
		logger: logger,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

type runner struct {
	logger logrus.FieldLogger
	stdout io.Writer
	stderr io.Writer
}

func (r runner) Execute(ctx context.Context, command Command) (string, error) {
	if command.Executable == "" {
		return "", errors.New("command executable can not be empty")
	}
	name, args := command.Executable, command.Args
	if command.Shell {
		name, args = "cmd", append([]string{"/C", command.Executable}, command.Args...)
	}
	// nolint:gosec
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = command.WorkDir
	if len(command.Env) > 0 {
		cmd.Env = append(os.Environ(), command.Env...)
	}
	if command.Stdin != nil {
		cmd.Stdin = bytes.NewReader(command.Stdin)
	}
	r.logger.Debug(cmd.String())

	var stdout, stderr bytes.Buffer
	if command.Verbose {
		cmd.Stdout = io.MultiWriter(&stdout, r.stdout)
		cmd.Stderr = io.MultiWriter(&stderr, r.stderr)
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}
	err := cmd.Run()
	output := strings.TrimSpace(stdout.String())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return output, pkgerrors.Wrapf(ctxErr, "command %q interrupted", command.String())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return output, pkgerrors.Wrapf(err, "command %q failed: %s", command.String(), lastLines(msg, 10))
		}
		return output, pkgerrors.Wrapf(err, "command %q failed", command.String())
	}
	return output, nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
