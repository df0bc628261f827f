package advice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/markdave123-py/LoanAdvisor/internal/models"
)

func sampleApplication() *models.Application {
	return &models.Application{
		ID: "app-1",
		Fields: models.Fields{
			models.FieldName:         "Asha",
			models.FieldAge:          "34",
			models.FieldOccupation:   "Engineer",
			models.FieldAnnualIncome: float64(1200000),
			models.FieldLoanAmount:   float64(5000000),
			models.FieldLoanPurpose:  "Home",
			models.FieldCreditScore:  "780",
		},
	}
}

func TestBuildAdvicePromptOrder(t *testing.T) {
	p := BuildAdvicePrompt(sampleApplication())
	lines := strings.Split(strings.TrimRight(p, "\n"), "\n")

	assert.Equal(t, "Provide financial advice for a person with the following details:", lines[0])
	assert.Len(t, lines, 1+len(adviceFields))
	assert.Equal(t, "- Name: Asha", lines[1])
	assert.Equal(t, "- Annual Income: 1200000", lines[4])
	assert.Equal(t, "- Loan Amount: 5000000", lines[5])
	assert.Equal(t, "- Existing Debt: ", lines[8])
	assert.Equal(t, "- Risk Tolerance: ", lines[13])
}

func TestBuildAdvicePromptEmptyApplication(t *testing.T) {
	p := BuildAdvicePrompt(&models.Application{})
	assert.Contains(t, p, "- Name: \n")
	assert.Contains(t, p, "- Savings: \n")
}

func TestBuildChatPrompt(t *testing.T) {
	p := BuildChatPrompt(sampleApplication(), "Can I prepay?")

	assert.True(t, strings.HasPrefix(p, "Context: This user has submitted a loan application"))
	assert.Contains(t, p, "- Loan Amount: ₹50.00 lakh\n")
	assert.Contains(t, p, "- Annual Income: ₹12.00 lakh\n")
	assert.Contains(t, p, "- Credit Score: 780\n")
	assert.Contains(t, p, "User asks: Can I prepay?\n")
	assert.Contains(t, p, "personalized response")
	assert.NotContains(t, p, "Occupation")
}

func TestBuildAdminChatPrompt(t *testing.T) {
	p := BuildAdminChatPrompt("How do I assess risk?")

	assert.Contains(t, p, "administrator of a loan application system")
	assert.Contains(t, p, "User asks: How do I assess risk?\n")
	assert.Contains(t, p, "financial best practices")
}
