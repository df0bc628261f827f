package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Form field names, kept verbatim as keys in Application.Fields.
const (
	FieldName               = "name"
	FieldAge                = "age"
	FieldOccupation         = "occupation"
	FieldAnnualIncome       = "annualIncome"
	FieldLoanAmount         = "loanAmount"
	FieldLoanPurpose        = "loanPurpose"
	FieldCreditScore        = "creditScore"
	FieldExistingDebt       = "existingDebt"
	FieldMonthlyExpenses    = "monthlyExpenses"
	FieldSavings            = "savings"
	FieldLoanType           = "loanType"
	FieldRepaymentStructure = "repaymentStructure"
	FieldRiskTolerance      = "riskTolerance"
)

// MoneyFields are normalized to rupees before an application is stored.
var MoneyFields = []string{
	FieldLoanAmount,
	FieldAnnualIncome,
	FieldExistingDebt,
	FieldMonthlyExpenses,
	FieldSavings,
}

// Visibility decides who may open an application by id.
type Visibility string

const (
	// VisibilityPrivate applications are restricted to their owner.
	VisibilityPrivate Visibility = "private"
	// VisibilityPublic applications are readable by anyone holding the id.
	VisibilityPublic Visibility = "public"
)

// User represents a registered portal user.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Fields holds the submitted form values of an application. It is stored
// as a JSON document.
type Fields map[string]any

// Value implements driver.Valuer.
func (f Fields) Value() (driver.Value, error) {
	if f == nil {
		return "{}", nil
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (f *Fields) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*f = Fields{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan fields: unsupported type %T", src)
	}
	out := Fields{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan fields: %w", err)
	}
	*f = out
	return nil
}

// Application is one loan application. It is never updated after creation.
type Application struct {
	ID         string     `db:"id" json:"id"`
	UserID     string     `db:"user_id" json:"user_id,omitempty"`
	Visibility Visibility `db:"visibility" json:"visibility"`
	Fields     Fields     `db:"fields" json:"fields"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// Get returns the field value or nil.
func (a *Application) Get(key string) any {
	if a == nil || a.Fields == nil {
		return nil
	}
	return a.Fields[key]
}

// Text returns the field rendered as text, "" when missing.
func (a *Application) Text(key string) string {
	switch v := a.Get(key).(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return formatFloat(v)
	default:
		return fmt.Sprint(v)
	}
}

// AccessibleBy reports whether a viewer may open the application. viewerID
// is empty for anonymous requests. Public applications are open to anyone
// holding the id. A signed-in viewer of a private application must be its
// owner; anonymous viewers are let through unless strict is set.
func (a *Application) AccessibleBy(viewerID string, strict bool) bool {
	if a.Visibility != VisibilityPrivate || a.UserID == "" {
		return true
	}
	if viewerID == "" {
		return !strict
	}
	return viewerID == a.UserID
}

// ChatTurn is one question and answer about an application.
type ChatTurn struct {
	ID                string    `db:"id" json:"-"`
	ApplicationID     string    `db:"application_id" json:"application_id"`
	Question          string    `db:"question" json:"question"`
	Response          string    `db:"response" json:"response"`
	FormattedResponse string    `db:"formatted_response" json:"formatted_response"`
	Timestamp         time.Time `db:"created_at" json:"timestamp"`
}

// AdminChatTurn is a general question asked from the applications console.
type AdminChatTurn struct {
	ID                string    `db:"id" json:"-"`
	AdminID           string    `db:"admin_id" json:"admin_id,omitempty"`
	Question          string    `db:"question" json:"question"`
	Response          string    `db:"response" json:"response"`
	FormattedResponse string    `db:"formatted_response" json:"formatted_response"`
	Timestamp         time.Time `db:"created_at" json:"timestamp"`
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Session ties a browser to a signed-in user until ExpiresAt.
type Session struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Username  string    `db:"username"`
	ExpiresAt time.Time `db:"expires_at"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
