package mongo

import "grindx/fittrack/pkg/logger"

// logIndexError records index-creation failures without aborting startup.
// Missing indexes degrade performance, not correctness.
func logIndexError(collection string, err error) {
	logger.Get().Warn().Err(err).Str("collection", collection).Msg("failed to create indexes")
}
