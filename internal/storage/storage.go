// internal/storage/storage.go
package storage

import (
	"context"

	"github.com/TokenRevolution/FCOtoken/internal/storage/models"
)

// Storage persists the engine's observable history.
type Storage interface {
	SaveTransfer(ctx context.Context, rec *models.TransferRecord) error
	ListTransfers(ctx context.Context, address string, limit, offset int) ([]*models.TransferRecord, error)

	SaveDistribution(ctx context.Context, rec *models.DistributionRecord) error
	ListDistributions(ctx context.Context, recipient string, limit, offset int) ([]*models.DistributionRecord, error)

	RunMigrations() error
}
