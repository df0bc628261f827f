package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsValueScan(t *testing.T) {
	in := Fields{"name": "Asha", "loanAmount": 25000000.0}

	v, err := in.Value()
	require.NoError(t, err)

	var out Fields
	require.NoError(t, out.Scan(v))
	assert.Equal(t, in, out)

	require.NoError(t, out.Scan([]byte(`{"age":"31"}`)))
	assert.Equal(t, Fields{"age": "31"}, out)

	require.NoError(t, out.Scan(nil))
	assert.Empty(t, out)

	assert.Error(t, out.Scan(42))
	assert.Error(t, out.Scan("not json"))
}

func TestApplicationText(t *testing.T) {
	app := &Application{Fields: Fields{
		"name":       "Asha",
		"loanAmount": 25000000.0,
		"age":        31,
	}}

	assert.Equal(t, "Asha", app.Text(FieldName))
	assert.Equal(t, "25000000", app.Text(FieldLoanAmount))
	assert.Equal(t, "31", app.Text(FieldAge))
	assert.Equal(t, "", app.Text(FieldSavings))

	var missing *Application
	assert.Nil(t, missing.Get(FieldName))
}

func TestAccessibleBy(t *testing.T) {
	public := &Application{Visibility: VisibilityPublic}
	owned := &Application{Visibility: VisibilityPrivate, UserID: "bob"}

	assert.True(t, public.AccessibleBy("", false))
	assert.True(t, public.AccessibleBy("carol", true))

	assert.True(t, owned.AccessibleBy("bob", false))
	assert.False(t, owned.AccessibleBy("carol", false))
	assert.True(t, owned.AccessibleBy("", false))
	assert.False(t, owned.AccessibleBy("", true))
	assert.True(t, owned.AccessibleBy("bob", true))
}
