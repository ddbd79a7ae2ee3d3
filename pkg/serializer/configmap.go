package serializer

import (
	"context"
	"fmt"
	"strings"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	accorev1 "k8s.io/client-go/applyconfigurations/core/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/NVIDIA/ceph-diagnostics/pkg/header"
	"github.com/NVIDIA/ceph-diagnostics/pkg/k8s/toolbox"
)

const (
	configMapWriteTimeout = 30 * time.Second
	fieldManager          = "ceph-collect"
)

// ConfigMapWriter writes serialized data to a Kubernetes ConfigMap using
// server-side apply, so the ConfigMap is created or updated in one call.
type ConfigMapWriter struct {
	namespace string
	name      string
	format    Format

	// Client is built from Kubeconfig when nil.
	Client     kubernetes.Interface
	Kubeconfig string
}

// NewConfigMapWriter creates a writer for namespace/name. An unknown format
// falls back to JSON.
func NewConfigMapWriter(namespace, name string, format Format) *ConfigMapWriter {
	if format.IsUnknown() {
		format = FormatJSON
	}
	return &ConfigMapWriter{
		namespace: namespace,
		name:      name,
		format:    format,
	}
}

// Serialize stores v under data["<kind>.<ext>"], alongside data.format and
// data.timestamp. Kind and timestamp come from the value's header when it
// has one.
func (w *ConfigMapWriter) Serialize(ctx context.Context, v any) error {
	writeCtx, cancel := context.WithTimeout(ctx, configMapWriteTimeout)
	defer cancel()

	client := w.Client
	if client == nil {
		c, _, err := toolbox.BuildKubeClient(w.Kubeconfig)
		if err != nil {
			return fmt.Errorf("failed to get kubernetes client: %w", err)
		}
		client = c
	}

	content, err := serialize(w.format, v)
	if err != nil {
		return err
	}
	extension := string(w.format)
	if w.format == FormatTable {
		extension = "txt"
	}

	kind, version, timestamp := "document", "unknown", time.Now().UTC().Format(time.RFC3339)
	if h, ok := headerOf(v); ok {
		kind = strings.ToLower(h.Kind.String())
		if s := h.Metadata["version"]; s != "" {
			version = s
		}
		if s := h.Metadata["timestamp"]; s != "" {
			timestamp = s
		}
	}

	cm := accorev1.ConfigMap(w.name, w.namespace).
		WithLabels(map[string]string{
			"app.kubernetes.io/name":      fieldManager,
			"app.kubernetes.io/component": kind,
			"app.kubernetes.io/version":   version,
		}).
		WithData(map[string]string{
			kind + "." + extension: string(content),
			"format":               string(w.format),
			"timestamp":            timestamp,
		})

	_, err = client.CoreV1().ConfigMaps(w.namespace).Apply(writeCtx, cm, metav1.ApplyOptions{
		FieldManager: fieldManager,
		Force:        true,
	})
	if err != nil {
		return fmt.Errorf("failed to apply ConfigMap %s/%s: %w", w.namespace, w.name, err)
	}
	return nil
}

// Close is a no-op; there are no resources to release.
func (w *ConfigMapWriter) Close() error {
	return nil
}

func headerOf(v any) (*header.Header, bool) {
	switch h := v.(type) {
	case interface{ GetHeader() *header.Header }:
		return h.GetHeader(), true
	case *header.Header:
		return h, true
	default:
		return nil, false
	}
}

// parseConfigMapURI parses cm://namespace/name.
func parseConfigMapURI(uri string) (namespace, name string, err error) {
	if !strings.HasPrefix(uri, ConfigMapURIScheme) {
		return "", "", fmt.Errorf("invalid ConfigMap URI: must start with %s", ConfigMapURIScheme)
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, ConfigMapURIScheme), "/", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid ConfigMap URI format: expected %snamespace/name, got %s", ConfigMapURIScheme, uri)
	}

	namespace = strings.TrimSpace(parts[0])
	name = strings.TrimSpace(parts[1])
	if namespace == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI: namespace cannot be empty")
	}
	if name == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI: name cannot be empty")
	}
	return namespace, name, nil
}
