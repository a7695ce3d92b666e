package inventory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/jonwraymond/hostdiag/health"
)

// KubeConfig configures Kubernetes node discovery.
type KubeConfig struct {
	// Kubeconfig is the kubeconfig path. Empty falls back to KUBECONFIG,
	// then in-cluster config, then the default loading rules.
	Kubeconfig string

	// Context overrides the kubeconfig current context.
	Context string

	// LabelSelector filters nodes, e.g. kubernetes.io/os=windows.
	LabelSelector string

	// IncludeNotReady keeps nodes whose Ready condition is not True.
	// Default: false
	IncludeNotReady bool
}

// Kube discovers hosts from the nodes of a cluster.
type Kube struct {
	client kubernetes.Interface
	config KubeConfig
}

// NewKube creates a node source over client. A malformed selector is a
// configuration error.
func NewKube(client kubernetes.Interface, config KubeConfig) (*Kube, error) {
	if config.LabelSelector != "" {
		if _, err := labels.Parse(config.LabelSelector); err != nil {
			return nil, &health.ConfigError{
				Field: "inventory.kubernetes.label_selector",
				Value: config.LabelSelector,
				Err:   fmt.Errorf("%w: %w", ErrInvalidSelector, err),
			}
		}
	}
	return &Kube{client: client, config: config}, nil
}

// Hosts lists matching nodes sorted by name and returns the address of each:
// the first InternalIP, else the Hostname address, else the node name.
func (k *Kube) Hosts(ctx context.Context) ([]string, error) {
	list, err := k.client.CoreV1().Nodes().List(ctx, metav1.ListOptions{LabelSelector: k.config.LabelSelector})
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}

	nodes := list.Items
	slices.SortFunc(nodes, func(a, b corev1.Node) int { return strings.Compare(a.Name, b.Name) })

	hosts := make([]string, 0, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		if !k.config.IncludeNotReady && !nodeReady(n) {
			continue
		}
		hosts = append(hosts, nodeAddress(n))
	}
	return hosts, nil
}

func nodeReady(n *corev1.Node) bool {
	for _, c := range n.Status.Conditions {
		if c.Type == corev1.NodeReady {
			return c.Status == corev1.ConditionTrue
		}
	}
	return false
}

func nodeAddress(n *corev1.Node) string {
	var hostname string
	for _, a := range n.Status.Addresses {
		switch a.Type {
		case corev1.NodeInternalIP:
			return a.Address
		case corev1.NodeHostName:
			if hostname == "" {
				hostname = a.Address
			}
		}
	}
	if hostname != "" {
		return hostname
	}
	return n.Name
}

// NewKubeClient builds a clientset from config.Kubeconfig, KUBECONFIG, the
// in-cluster environment or the default loading rules, in that order.
func NewKubeClient(config KubeConfig) (kubernetes.Interface, error) {
	rc, err := loadRestConfig(config)
	if err != nil {
		return nil, &health.ConfigError{Field: "inventory.kubernetes.kubeconfig", Value: config.Kubeconfig, Err: err}
	}
	cs, err := kubernetes.NewForConfig(rc)
	if err != nil {
		return nil, fmt.Errorf("create kube client: %w", err)
	}
	return cs, nil
}

func loadRestConfig(config KubeConfig) (*rest.Config, error) {
	overrides := &clientcmd.ConfigOverrides{CurrentContext: config.Context}

	if path := kubeconfigPath(config.Kubeconfig); path != "" {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		raw, err := clientcmd.LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrKubeConfig, path, err)
		}
		rc, err := clientcmd.NewDefaultClientConfig(*raw, overrides).ClientConfig()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrKubeConfig, path, err)
		}
		return rc, nil
	}

	if rc, err := rest.InClusterConfig(); err == nil {
		return rc, nil
	}

	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	rc, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("%w: default rules: %w", ErrKubeConfig, err)
	}
	return rc, nil
}

// kubeconfigPath returns explicit, else the first existing KUBECONFIG entry,
// else the raw KUBECONFIG value.
func kubeconfigPath(explicit string) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}
	env := strings.TrimSpace(os.Getenv("KUBECONFIG"))
	if env == "" {
		return ""
	}
	for _, p := range filepath.SplitList(env) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return env
}
