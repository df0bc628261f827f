package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/markdave123-py/LoanAdvisor/internal/advice"
	"github.com/markdave123-py/LoanAdvisor/internal/core"
	"github.com/markdave123-py/LoanAdvisor/internal/models"
)

// ErrEmptyQuestion is returned when a chat request carries no question.
var ErrEmptyQuestion = errors.New("no question provided")

// saveTimeout bounds the transcript write, which runs detached from the
// request so an answer cut short by a deadline is still recorded.
const saveTimeout = 10 * time.Second

func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
}

type ChatService struct {
	db      core.DbClient
	advisor *advice.Advisor
	logger  *zap.Logger
}

func NewChatService(db core.DbClient, advisor *advice.Advisor, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{db: db, advisor: advisor, logger: logger}
}

// Ask answers a question about app and appends the exchange to its
// transcript. Inference failures are recorded like any other answer.
func (s *ChatService) Ask(ctx context.Context, app *models.Application, question string) (advice.Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return advice.Result{}, ErrEmptyQuestion
	}

	res := s.advisor.Answer(ctx, app, question)
	turn := &models.ChatTurn{
		ApplicationID:     app.ID,
		Question:          question,
		Response:          res.Raw,
		FormattedResponse: string(res.HTML),
		Timestamp:         res.Timestamp.UTC(),
	}
	saveCtx, cancel := detached(ctx)
	defer cancel()
	if err := s.db.CreateChatTurn(saveCtx, turn); err != nil {
		return res, fmt.Errorf("store chat turn: %w", err)
	}
	return res, nil
}

// AskGeneral answers a question from the applications console.
func (s *ChatService) AskGeneral(ctx context.Context, adminID, question string) (advice.Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return advice.Result{}, ErrEmptyQuestion
	}

	res := s.advisor.AnswerGeneral(ctx, question)
	turn := &models.AdminChatTurn{
		AdminID:           adminID,
		Question:          question,
		Response:          res.Raw,
		FormattedResponse: string(res.HTML),
		Timestamp:         res.Timestamp.UTC(),
	}
	saveCtx, cancel := detached(ctx)
	defer cancel()
	if err := s.db.CreateAdminChatTurn(saveCtx, turn); err != nil {
		return res, fmt.Errorf("store admin chat turn: %w", err)
	}
	return res, nil
}

// History returns the application's transcript oldest first.
func (s *ChatService) History(ctx context.Context, applicationID string) ([]models.ChatTurn, error) {
	return s.db.GetChatHistory(ctx, applicationID)
}
