package core

import (
	"context"

	"github.com/markdave123-py/LoanAdvisor/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts the SQL backend so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	CreateApplication(ctx context.Context, app *models.Application) error
	GetApplicationByID(ctx context.Context, id string) (*models.Application, error)
	ListApplications(ctx context.Context, ownerID string) ([]models.Application, error)

	CreateChatTurn(ctx context.Context, turn *models.ChatTurn) error
	GetChatHistory(ctx context.Context, applicationID string) ([]models.ChatTurn, error)
	CreateAdminChatTurn(ctx context.Context, turn *models.AdminChatTurn) error

	CreateSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
}
