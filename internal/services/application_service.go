package services

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"go.uber.org/zap"

	"github.com/markdave123-py/LoanAdvisor/internal/advice"
	"github.com/markdave123-py/LoanAdvisor/internal/core"
	db "github.com/markdave123-py/LoanAdvisor/internal/core/database"
	objectclient "github.com/markdave123-py/LoanAdvisor/internal/core/object-client"
	"github.com/markdave123-py/LoanAdvisor/internal/currency"
	"github.com/markdave123-py/LoanAdvisor/internal/models"
)

var (
	// ErrNotFound is returned for unknown or malformed application ids.
	ErrNotFound = db.ErrNotFound
	// ErrForbidden is returned when the viewer may not open an application.
	ErrForbidden = errors.New("application belongs to another user")
)

type ApplicationService struct {
	db      core.DbClient
	advisor *advice.Advisor
	logger  *zap.Logger
	strict  bool

	archive core.ObjectClient
	bucket  string
}

func NewApplicationService(db core.DbClient, advisor *advice.Advisor, logger *zap.Logger, strict bool) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{db: db, advisor: advisor, logger: logger, strict: strict}
}

// WithArchive makes Advice store each generated page in bucket.
func (s *ApplicationService) WithArchive(obj core.ObjectClient, bucket string) *ApplicationService {
	s.archive = obj
	s.bucket = bucket
	return s
}

// Submit normalizes the money fields, stores the application and returns
// it as read back from the store. ownerID is empty for anonymous
// submissions, which makes the application public.
func (s *ApplicationService) Submit(ctx context.Context, ownerID string, fields models.Fields) (*models.Application, error) {
	normalized := models.Fields{}
	maps.Copy(normalized, fields)
	currency.NormalizeFields(normalized, models.MoneyFields...)

	app := &models.Application{
		UserID:     ownerID,
		Visibility: models.VisibilityPublic,
		Fields:     normalized,
	}
	if ownerID != "" {
		app.Visibility = models.VisibilityPrivate
	}

	if err := s.db.CreateApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("store application: %w", err)
	}

	stored, err := s.db.GetApplicationByID(ctx, app.ID)
	if err != nil {
		return nil, fmt.Errorf("reload application %s: %w", app.ID, err)
	}

	s.logger.Info("application submitted",
		zap.String("application_id", stored.ID),
		zap.String("visibility", string(stored.Visibility)))
	return stored, nil
}

// Get loads an application and checks that viewerID may open it.
func (s *ApplicationService) Get(ctx context.Context, id, viewerID string) (*models.Application, error) {
	app, err := s.db.GetApplicationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !app.AccessibleBy(viewerID, s.strict) {
		return nil, ErrForbidden
	}
	return app, nil
}

// CanView reports whether viewerID may see application id's data. Unknown
// applications are viewable since they expose nothing.
func (s *ApplicationService) CanView(ctx context.Context, id, viewerID string) (bool, error) {
	_, err := s.Get(ctx, id, viewerID)
	switch {
	case err == nil, errors.Is(err, ErrNotFound):
		return true, nil
	case errors.Is(err, ErrForbidden):
		return false, nil
	default:
		return false, err
	}
}

// List returns ownerID's applications, or all of them when ownerID is empty.
func (s *ApplicationService) List(ctx context.Context, ownerID string) ([]models.Application, error) {
	return s.db.ListApplications(ctx, ownerID)
}

// Advice generates advice for app. Failures come back as an unavailable
// Result, never as an error.
func (s *ApplicationService) Advice(ctx context.Context, app *models.Application) advice.Result {
	res := s.advisor.Advise(ctx, app)
	if res.Available && s.archive != nil && s.bucket != "" {
		s.archiveAdvice(ctx, app.ID, res)
	}
	return res
}

func (s *ApplicationService) archiveAdvice(ctx context.Context, appID string, res advice.Result) {
	key := objectclient.AdviceKey(appID, res.Timestamp)
	url, err := s.archive.UploadFile(ctx, s.bucket, key, []byte(res.HTML), "text/html; charset=utf-8")
	if err != nil {
		s.logger.Warn("advice archive failed", zap.String("application_id", appID), zap.Error(err))
		return
	}
	s.logger.Debug("advice archived", zap.String("application_id", appID), zap.String("url", url))
}
