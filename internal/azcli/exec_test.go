package azcli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	utilexec "k8s.io/utils/exec"
	fakeexec "k8s.io/utils/exec/testing"
)

func scripted(action fakeexec.FakeAction) (*fakeexec.FakeExec, *fakeexec.FakeCmd) {
	cmd := &fakeexec.FakeCmd{RunScript: []fakeexec.FakeAction{action}}
	fe := &fakeexec.FakeExec{
		CommandScript: []fakeexec.FakeCommandAction{
			func(name string, args ...string) utilexec.Cmd {
				return fakeexec.InitFakeCmd(cmd, name, args...)
			},
		},
	}
	return fe, cmd
}

func TestRunnerSuccess(t *testing.T) {
	fe, cmd := scripted(func() ([]byte, []byte, error) {
		return []byte(`{"value":[]}`), nil, nil
	})
	r := NewRunner(WithExec(fe))

	res := r.Execute(context.Background(), "az", time.Second, "devops", "project", "list")

	assert.True(t, res.OK())
	assert.Equal(t, `{"value":[]}`, res.Stdout)
	assert.Equal(t, []string{"az", "devops", "project", "list"}, cmd.Argv)
	assert.Equal(t, 1, fe.CommandCalls)
}

func TestRunnerExitStatus(t *testing.T) {
	fe, _ := scripted(func() ([]byte, []byte, error) {
		return nil, []byte("ERROR: TF400813: not authorized"), &fakeexec.FakeExitError{Status: 2}
	})
	r := NewRunner(WithExec(fe))

	res := r.Execute(context.Background(), "az", time.Second, "repos", "list")

	assert.Equal(t, 2, res.ExitCode)
	assert.Contains(t, res.Stderr, "TF400813")
	assert.Contains(t, res.Describe(), "exit code 2")
}

func TestRunnerExecutableNotFound(t *testing.T) {
	fe, _ := scripted(func() ([]byte, []byte, error) {
		return nil, nil, utilexec.ErrExecutableNotFound
	})
	r := NewRunner(WithExec(fe))

	res := r.Execute(context.Background(), "az", time.Second)

	assert.Equal(t, ExitNotFound, res.ExitCode)
	assert.Contains(t, res.Stderr, "executable not found")
}

func TestRunnerUnknownError(t *testing.T) {
	fe, _ := scripted(func() ([]byte, []byte, error) {
		return []byte("partial"), nil, errors.New("pipe broken")
	})
	r := NewRunner(WithExec(fe))

	res := r.Execute(context.Background(), "az", time.Second)

	assert.Equal(t, ExitFailure, res.ExitCode)
	assert.Equal(t, "partial", res.Stdout)
	assert.Contains(t, res.Stderr, "pipe broken")
}

func TestRunnerRateLimitCancelled(t *testing.T) {
	fe, _ := scripted(func() ([]byte, []byte, error) { return nil, nil, nil })
	r := NewRunner(WithExec(fe), WithRateLimit(0.001))

	// The first call consumes the single burst token.
	require.True(t, r.Execute(context.Background(), "az", time.Second).OK())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := r.Execute(ctx, "az", time.Second)

	assert.Equal(t, ExitFailure, res.ExitCode)
	assert.Contains(t, res.Stderr, "rate limiter")
	assert.Equal(t, 1, fe.CommandCalls, "a throttled call never spawns a process")
}

func TestClientQueryAppendsOutput(t *testing.T) {
	fe, cmd := scripted(func() ([]byte, []byte, error) { return []byte("[]"), nil, nil })
	c := NewClient(NewRunner(WithExec(fe)), "az", time.Second)

	res := c.Query(context.Background(), "repos", "list")

	require.True(t, res.OK())
	assert.Equal(t, []string{"az", "repos", "list", "--output", "json"}, cmd.Argv)
}

func TestDecode(t *testing.T) {
	v, err := Decode(" [1, {\"a\": true}] \n")
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), map[string]any{"a": true}}, v)

	_, err = Decode("   ")
	assert.Error(t, err)

	_, err = Decode("WARNING: not json")
	assert.Error(t, err)
}
