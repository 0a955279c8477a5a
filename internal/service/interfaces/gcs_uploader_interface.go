package interfaces

import "context"

// GCSUploaderInterface abstracts the bucket writer used for archiving
// unapplied payment remainders.
type GCSUploaderInterface interface {
	Upload(ctx context.Context, objectName string, data []byte) error
}
