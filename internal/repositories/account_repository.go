package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

// AccountRepository defines the data access contract for accounts.
// The refresh-fingerprint operations live on the same repository because the
// fingerprint is a column of the account row, overwritten in place.
type AccountRepository interface {
	Create(ctx context.Context, account models.Account) error
	FindByID(ctx context.Context, id string) (models.Account, error)
	FindByIdentifier(ctx context.Context, emailOrUsername string) (models.Account, error)
	FindByUsername(ctx context.Context, username string) (models.Account, error)
	UpdateDetails(ctx context.Context, id, fullName, email string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAvatar(ctx context.Context, id, url string) error
	UpdateCoverImage(ctx context.Context, id, url string) error

	SetFingerprint(ctx context.Context, accountID, fingerprint string) error
	Fingerprint(ctx context.Context, accountID string) (string, error)
	ClearFingerprint(ctx context.Context, accountID string) error
}
