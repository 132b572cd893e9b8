package probe

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"

	corev1 "k8s.io/api/core/v1"

	hsjv1alpha1 "github.com/paia-tech/hsj-operator/api/v1alpha1"
)

const maxDrainBytes = 4096

func (e *Executor) probeHTTP(ctx context.Context, pod *corev1.Pod, spec *hsjv1alpha1.BusyProbeSpec) (bool, error) {
	if pod.Status.PodIP == "" {
		return false, fmt.Errorf("http: %w", ErrNoPodIP)
	}

	port, path := spec.HTTPTarget()
	url := "http://" + net.JoinHostPort(pod.Status.PodIP, strconv.Itoa(int(port))) + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("http: build request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("http: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}
