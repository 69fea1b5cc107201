package services

import (
	"context"
	"fmt"

	"storedir/internal/repositories"

	"github.com/gosimple/slug"
)

// assignSlug derives a URL slug from name and suffixes it with -N when
// earlier stores already use it. Concurrent creations with the same name can
// still race to the same slug.
func assignSlug(ctx context.Context, stores repositories.StoreRepository, name string) (string, error) {
	base := slug.Make(name)
	n, err := stores.CountSlugMatches(ctx, base)
	if err != nil {
		return "", fmt.Errorf("failed to count slugs matching %q: %w", base, err)
	}
	if n > 0 {
		return fmt.Sprintf("%s-%d", base, n+1), nil
	}
	return base, nil
}
