package executors

import "github.com/graphrun/graphrun/internal/infrastructure/providers"

// TextResolver looks up the shared TextProvider for a provider id, typically
// backed by providers.TextRegistry.Get.
type TextResolver func(providerID string) (providers.TextProvider, error)

// ImageResolver looks up the shared ImageProvider for a provider id,
// typically backed by providers.ImageRegistry.Get.
type ImageResolver func(providerID string) (providers.ImageProvider, error)
