package properties

import (
	"context"
)

// Repository is the storage service workbooks are downloaded from.
type Repository interface {
	Authenticate(ctx context.Context) error
	Workbook(ctx context.Context, fileId string) ([]byte, error)
}
