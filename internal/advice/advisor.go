package advice

import (
	"context"
	"errors"
	"html/template"
	"time"

	"go.uber.org/zap"

	"github.com/markdave123-py/LoanAdvisor/internal/core"
	"github.com/markdave123-py/LoanAdvisor/internal/core/llm"
	"github.com/markdave123-py/LoanAdvisor/internal/models"
)

// Result is one generated answer. When Available is false the inference
// call failed: Raw holds a warning message and HTML the unavailable notice.
type Result struct {
	Raw       string
	HTML      template.HTML
	Available bool
	Timestamp time.Time
}

// Advisor turns applications and questions into formatted answers.
type Advisor struct {
	llm    core.LLMProvider
	logger *zap.Logger
	now    func() time.Time
}

func NewAdvisor(provider core.LLMProvider, logger *zap.Logger) *Advisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Advisor{llm: provider, logger: logger, now: time.Now}
}

// Advise generates advice for a stored application.
func (a *Advisor) Advise(ctx context.Context, app *models.Application) Result {
	return a.run(ctx, "advice", BuildAdvicePrompt(app), zap.String("application_id", app.ID))
}

// Answer replies to a question about an application.
func (a *Advisor) Answer(ctx context.Context, app *models.Application, question string) Result {
	return a.run(ctx, "chat", BuildChatPrompt(app, question), zap.String("application_id", app.ID))
}

// AnswerGeneral replies to a question with no application context.
func (a *Advisor) AnswerGeneral(ctx context.Context, question string) Result {
	return a.run(ctx, "admin_chat", BuildAdminChatPrompt(question))
}

func (a *Advisor) run(ctx context.Context, kind, prompt string, fields ...zap.Field) Result {
	start := a.now()
	raw, err := a.llm.Generate(ctx, "", prompt)
	fields = append(fields, zap.String("kind", kind), zap.Duration("elapsed", a.now().Sub(start)))

	if err != nil {
		msg := UnavailableMessage(err)
		a.logger.Warn("inference failed", append(fields, zap.Error(err))...)
		return Result{Raw: msg, HTML: FormatUnavailable(msg), Timestamp: a.now()}
	}

	a.logger.Debug("inference completed", append(fields, zap.Int("response_len", len(raw)))...)
	return Result{Raw: raw, HTML: FormatResponse(raw), Available: true, Timestamp: a.now()}
}

// UnavailableMessage is the warning shown in place of advice.
func UnavailableMessage(err error) string {
	if errors.Is(err, llm.ErrNoResponse) {
		return "⚠️ Error: No response key in inference output."
	}
	return "⚠️ Error calling inference service: " + err.Error()
}
