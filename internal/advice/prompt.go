package advice

import (
	"strings"

	"github.com/markdave123-py/LoanAdvisor/internal/currency"
	"github.com/markdave123-py/LoanAdvisor/internal/models"
)

type promptField struct {
	label string
	key   string
}

// adviceFields is the fixed order of the advice prompt.
var adviceFields = []promptField{
	{"Name", models.FieldName},
	{"Age", models.FieldAge},
	{"Occupation", models.FieldOccupation},
	{"Annual Income", models.FieldAnnualIncome},
	{"Loan Amount", models.FieldLoanAmount},
	{"Loan Purpose", models.FieldLoanPurpose},
	{"Credit Score", models.FieldCreditScore},
	{"Existing Debt", models.FieldExistingDebt},
	{"Monthly Expenses", models.FieldMonthlyExpenses},
	{"Savings", models.FieldSavings},
	{"Loan Type", models.FieldLoanType},
	{"Repayment Structure", models.FieldRepaymentStructure},
	{"Risk Tolerance", models.FieldRiskTolerance},
}

// BuildAdvicePrompt lists every applicant field under a fixed instruction.
// Missing fields are rendered empty.
func BuildAdvicePrompt(app *models.Application) string {
	var b strings.Builder
	b.WriteString("Provide financial advice for a person with the following details:\n")
	for _, f := range adviceFields {
		writeLine(&b, f.label, app.Text(f.key))
	}
	return b.String()
}

// BuildChatPrompt anchors a follow-up question to the application.
func BuildChatPrompt(app *models.Application, question string) string {
	var b strings.Builder
	b.WriteString("Context: This user has submitted a loan application with the following details:\n")
	writeLine(&b, "Name", app.Text(models.FieldName))
	writeLine(&b, "Loan Amount", currency.Format(app.Get(models.FieldLoanAmount), true))
	writeLine(&b, "Loan Purpose", app.Text(models.FieldLoanPurpose))
	writeLine(&b, "Credit Score", app.Text(models.FieldCreditScore))
	writeLine(&b, "Annual Income", currency.Format(app.Get(models.FieldAnnualIncome), true))
	b.WriteString("\nUser asks: ")
	b.WriteString(question)
	b.WriteString("\n\nProvide a helpful, accurate, and personalized response addressing their question about finances or loans.\n")
	b.WriteString("Keep the response concise yet informative.\n")
	return b.String()
}

// BuildAdminChatPrompt is used from the applications console, where no
// single application gives context.
func BuildAdminChatPrompt(question string) string {
	var b strings.Builder
	b.WriteString("Context: You are a financial advisor providing general advice to an administrator of a loan application system.\n")
	b.WriteString("\nUser asks: ")
	b.WriteString(question)
	b.WriteString("\n\nProvide a helpful, accurate, and informative response addressing their question about finances, loans, or financial best practices.\n")
	b.WriteString("Keep the response concise yet informative. Include specific examples or recommendations when appropriate.\n")
	return b.String()
}

func writeLine(b *strings.Builder, label, value string) {
	b.WriteString("- ")
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteByte('\n')
}
