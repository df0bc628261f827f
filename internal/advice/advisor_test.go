package advice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/markdave123-py/LoanAdvisor/internal/core/llm"
)

type stubLLM struct {
	reply  string
	err    error
	prompt string
}

func (s *stubLLM) Generate(_ context.Context, _ string, userPrompt string) (string, error) {
	s.prompt = userPrompt
	return s.reply, s.err
}

func TestAdviseAvailable(t *testing.T) {
	stub := &stubLLM{reply: "**Verdict** Affordable."}
	a := NewAdvisor(stub, zap.NewNop())

	res := a.Advise(context.Background(), sampleApplication())

	require.True(t, res.Available)
	assert.Equal(t, "**Verdict** Affordable.", res.Raw)
	assert.Contains(t, string(res.HTML), "<strong>Verdict</strong>")
	assert.False(t, res.Timestamp.IsZero())
	assert.True(t, strings.HasPrefix(stub.prompt, "Provide financial advice"))
}

func TestAdviseUnavailable(t *testing.T) {
	stub := &stubLLM{err: errors.New("dial tcp 127.0.0.1:11434: connect: connection refused")}
	a := NewAdvisor(stub, nil)

	res := a.Advise(context.Background(), sampleApplication())

	assert.False(t, res.Available)
	assert.True(t, strings.HasPrefix(res.Raw, "⚠️ Error calling inference service: "))
	assert.Contains(t, res.Raw, "connection refused")
	assert.Contains(t, string(res.HTML), "advice-unavailable")
}

func TestAdviseNoResponse(t *testing.T) {
	a := NewAdvisor(&stubLLM{err: fmt.Errorf("ollama: %w", llm.ErrNoResponse)}, nil)

	res := a.Advise(context.Background(), sampleApplication())

	assert.False(t, res.Available)
	assert.Equal(t, "⚠️ Error: No response key in inference output.", res.Raw)
}

func TestAnswerUsesApplicationContext(t *testing.T) {
	stub := &stubLLM{reply: "Yes."}
	res := NewAdvisor(stub, nil).Answer(context.Background(), sampleApplication(), "Can I prepay?")

	assert.True(t, res.Available)
	assert.Contains(t, stub.prompt, "- Name: Asha")
	assert.Contains(t, stub.prompt, "User asks: Can I prepay?")
}

func TestAnswerGeneral(t *testing.T) {
	stub := &stubLLM{reply: "Diversify."}
	res := NewAdvisor(stub, nil).AnswerGeneral(context.Background(), "Best practices?")

	assert.True(t, res.Available)
	assert.Contains(t, stub.prompt, "administrator of a loan application system")
}
