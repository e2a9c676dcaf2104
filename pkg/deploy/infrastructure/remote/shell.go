package remote

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/command"
)

// Shell executes commands and transfers files on the remote host. Every call
// is an independent connection.
type Shell interface {
	Run(ctx context.Context, script string) (string, error)
	Copy(ctx context.Context, localPath, remotePath string, recursive bool) error
	WriteFile(ctx context.Context, content []byte, remotePath string) error
}

func NewSSHShell(identityFile, host string, runner command.Runner) *SSHShell {
	return &SSHShell{
		identityFile: identityFile,
		host:         host,
		runner:       runner,
		ssh:          "ssh",
		scp:          "scp",
	}
}

type SSHShell struct {
	identityFile string
	host         string
	runner       command.Runner
	ssh          string
	scp          string
}

// WithExecutables overrides the ssh and scp binaries, e.g. with absolute paths
// outside PATH.
func (s *SSHShell) WithExecutables(ssh, scp string) *SSHShell {
	s.ssh = ssh
	s.scp = scp
	return s
}

func (s *SSHShell) Run(ctx context.Context, script string) (string, error) {
	output, err := s.runner.Execute(ctx, command.Command{
		Executable: s.ssh,
		Args:       append(s.options(), s.host, script),
	})
	return output, errors.Wrapf(err, "remote command failed on %v", s.host)
}

func (s *SSHShell) Copy(ctx context.Context, localPath, remotePath string, recursive bool) error {
	args := s.options()
	if recursive {
		args = append(args, "-r")
	}
	args = append(args, filepath.ToSlash(localPath), s.host+":"+remotePath)
	_, err := s.runner.Execute(ctx, command.Command{
		Executable: s.scp,
		Args:       args,
	})
	return errors.Wrapf(err, "failed to copy %v to %v:%v", localPath, s.host, remotePath)
}

func (s *SSHShell) WriteFile(ctx context.Context, content []byte, remotePath string) error {
	_, err := s.runner.Execute(ctx, command.Command{
		Executable: s.ssh,
		Args:       append(s.options(), s.host, "cat > "+Quote(remotePath)),
		Stdin:      content,
	})
	return errors.Wrapf(err, "failed to write %v on %v", remotePath, s.host)
}

func (s *SSHShell) options() []string {
	return []string{"-i", s.identityFile, "-o", "StrictHostKeyChecking=no"}
}

// Quote makes s safe to embed as a single word in a POSIX shell script.
func Quote(s string) string {
	if s != "" && strings.Trim(s, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_./:=@") == "" {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
