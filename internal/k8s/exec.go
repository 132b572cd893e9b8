package k8s

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/remotecommand"
	utilexec "k8s.io/client-go/util/exec"
)

// maxCapturedOutput bounds how much stdout/stderr of a probe command is kept for logging.
const maxCapturedOutput = 4096

// ExecError carries the output of a command that could not be started or was cut off.
type ExecError struct {
	Pod    string
	Stderr string
	Err    error
}

func (e *ExecError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("exec in pod %s: %v", e.Pod, e.Err)
	}
	return fmt.Sprintf("exec in pod %s: %v (stderr: %s)", e.Pod, e.Err, e.Stderr)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// Exec runs command in a container of the given pod and returns its exit code.
// A non-zero exit code is not an error; errors mean the command could not be
// run to completion (transport failure, missing container, context deadline).
// An empty container selects the pod's default container.
func (c *Client) Exec(ctx context.Context, namespace, pod, container string, command []string) (int, error) {
	req := c.clientset.CoreV1().RESTClient().Post().
		Resource("pods").
		Name(pod).
		Namespace(namespace).
		SubResource("exec").
		VersionedParams(&corev1.PodExecOptions{
			Container: container,
			Command:   command,
			Stdout:    true,
			Stderr:    true,
			TTY:       false,
		}, scheme.ParameterCodec)

	executor, err := remotecommand.NewSPDYExecutor(c.config, "POST", req.URL())
	if err != nil {
		return -1, fmt.Errorf("failed to create executor: %w", err)
	}

	stdout := &limitedBuffer{limit: maxCapturedOutput}
	stderr := &limitedBuffer{limit: maxCapturedOutput}
	err = executor.StreamWithContext(ctx, remotecommand.StreamOptions{
		Stdout: stdout,
		Stderr: stderr,
		Tty:    false,
	})
	if err == nil {
		return 0, nil
	}

	var exitErr utilexec.ExitError
	if errors.As(err, &exitErr) && exitErr.Exited() {
		return exitErr.ExitStatus(), nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	return -1, &ExecError{Pod: namespace + "/" + pod, Stderr: stderr.String(), Err: err}
}

// limitedBuffer keeps the first limit bytes written and discards the rest.
type limitedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	return b.buf.String()
}
