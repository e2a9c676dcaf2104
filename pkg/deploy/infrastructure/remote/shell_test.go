package remote

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/command/commandtest"
)

func TestRunBuildsSSHInvocation(t *testing.T) {
	runner := commandtest.NewFakeRunner().On("ssh", commandtest.Output("active"))
	shell := NewSSHShell("/keys/id.pem", "ubuntu@10.0.0.1", runner)

	output, err := shell.Run(context.Background(), "systemctl is-active nginx")

	require.NoError(t, err)
	assert.Equal(t, "active", output)
	assert.Equal(t,
		[]string{"ssh -i /keys/id.pem -o StrictHostKeyChecking=no ubuntu@10.0.0.1 systemctl is-active nginx"},
		runner.Lines(),
	)
}

func TestCopyRecursive(t *testing.T) {
	runner := commandtest.NewFakeRunner()
	shell := NewSSHShell("key", "ubuntu@host", runner)

	require.NoError(t, shell.Copy(context.Background(), "/build/dist/assets", "/opt/app/frontend", true))

	assert.Equal(t,
		[]string{"scp -i key -o StrictHostKeyChecking=no -r /build/dist/assets ubuntu@host:/opt/app/frontend"},
		runner.Lines(),
	)
}

func TestWithExecutables(t *testing.T) {
	runner := commandtest.NewFakeRunner()
	shell := NewSSHShell("key", "ubuntu@host", runner).WithExecutables("/git/bin/ssh.exe", "/git/bin/scp.exe")

	_, err := shell.Run(context.Background(), "true")
	require.NoError(t, err)
	require.NoError(t, shell.Copy(context.Background(), "app", "/opt/app/backend/app", false))

	require.Len(t, runner.Commands, 2)
	assert.Equal(t, "/git/bin/ssh.exe", runner.Commands[0].Executable)
	assert.Equal(t, "/git/bin/scp.exe", runner.Commands[1].Executable)
}

func TestWriteFilePipesContent(t *testing.T) {
	runner := commandtest.NewFakeRunner()
	shell := NewSSHShell("key", "ubuntu@host", runner)

	require.NoError(t, shell.WriteFile(context.Background(), []byte("[Unit]\n"), "/tmp/app.service"))

	require.Len(t, runner.Commands, 1)
	assert.Equal(t, []byte("[Unit]\n"), runner.Commands[0].Stdin)
	assert.Equal(t, "cat > /tmp/app.service", runner.Commands[0].Args[len(runner.Commands[0].Args)-1])
}

func TestRunWrapsFailure(t *testing.T) {
	runner := commandtest.NewFakeRunner().On("ssh", commandtest.Fail(assert.AnError))
	shell := NewSSHShell("key", "ubuntu@host", runner)

	_, err := shell.Run(context.Background(), "true")

	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "ubuntu@host")
}

func TestQuote(t *testing.T) {
	assert.Equal(t, "/opt/app/backend", Quote("/opt/app/backend"))
	assert.Equal(t, "'my file'", Quote("my file"))
	assert.Equal(t, `'it'\''s'`, Quote("it's"))
	assert.Equal(t, "''", Quote(""))
}
