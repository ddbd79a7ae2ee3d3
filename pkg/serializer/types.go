package serializer

import "context"

// Serializer writes a value in some output format.
type Serializer interface {
	Serialize(ctx context.Context, v any) error
}

// Closer is implemented by Serializers holding resources such as files.
type Closer interface {
	Close() error
}

// ConfigMapURIScheme selects a Kubernetes ConfigMap as the output target.
const ConfigMapURIScheme = "cm://"
