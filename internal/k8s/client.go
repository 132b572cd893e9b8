// Package k8s provides the Kubernetes client bootstrap and the pod exec
// transport used by the busy probe.
package k8s

import (
	"fmt"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// Client wraps the typed clientset together with the rest config it was built from.
// The rest config is needed again for SPDY upgrades.
type Client struct {
	clientset kubernetes.Interface
	config    *rest.Config
}

// NewClient creates a client from an existing rest config.
func NewClient(config *rest.Config) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("rest config is required")
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	return &Client{
		clientset: clientset,
		config:    config,
	}, nil
}

// NewClientFromBytes creates a client from kubeconfig bytes.
func NewClientFromBytes(kubeconfigData []byte) (*Client, error) {
	config, err := clientcmd.RESTConfigFromKubeConfig(kubeconfigData)
	if err != nil {
		return nil, fmt.Errorf("failed to build kubeconfig from bytes: %w", err)
	}
	return NewClient(config)
}

// Clientset returns the typed clientset.
func (c *Client) Clientset() kubernetes.Interface {
	return c.clientset
}

// RESTConfig returns the rest config the client was built from.
func (c *Client) RESTConfig() *rest.Config {
	return c.config
}
