package media

import (
	"context"
	"errors"

	"go.uber.org/multierr"

	"github.com/nyumbalink/listings-backend/pkg/storage/gcs"
)

// DeleteObjects best-effort removes the given storage objects. Missing
// objects are fine; every other failure is counted as a leaked object and
// folded into the combined error. Callers log the result and move on;
// a leak never blocks the mutation that triggered the cleanup.
func (s *service) DeleteObjects(ctx context.Context, keys []string) error {
	var combined error
	for _, key := range keys {
		err := s.store.DeleteObject(ctx, s.bucket, key)
		if err == nil || errors.Is(err, gcs.ErrObjectNotFound) {
			continue
		}
		s.metrics.IncLeakedObject()
		logCtx := s.logg.WithGCSKey(ctx, key)
		s.logg.Warn(logCtx, "storage object delete failed, object leaked")
		combined = multierr.Append(combined, err)
	}
	return combined
}
