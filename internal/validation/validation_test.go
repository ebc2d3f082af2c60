package validation

import (
	"encoding/json"
	"testing"

	catalogdomain "github.com/smallbiznis/rechargemock/internal/catalog/domain"
	catalogservice "github.com/smallbiznis/rechargemock/internal/catalog/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() catalogdomain.Service {
	return catalogservice.New(catalogservice.Params{Catalog: catalogdomain.DefaultCatalog()})
}

func TestValidateRechargeRuleOrder(t *testing.T) {
	cat := testCatalog()

	cases := []struct {
		name string
		in   RechargeInput
		code string
	}{
		{"missing phone", RechargeInput{Amount: 100.0, Operator: "robi"}, CodeMissingRequiredFields},
		{"missing amount", RechargeInput{PhoneNumber: "01712345678", Operator: "robi"}, CodeMissingRequiredFields},
		{"zero amount counts as missing", RechargeInput{PhoneNumber: "01712345678", Amount: 0.0, Operator: "robi"}, CodeMissingRequiredFields},
		{"missing operator", RechargeInput{PhoneNumber: "01712345678", Amount: 100.0}, CodeMissingRequiredFields},
		{"unknown operator before bad phone", RechargeInput{PhoneNumber: "123", Amount: 100.0, Operator: "jio"}, CodeUnsupportedOperator},
		{"bad phone before bad amount", RechargeInput{PhoneNumber: "123", Amount: 1.0, Operator: "robi"}, CodeInvalidPhoneFormat},
		{"amount below range", RechargeInput{PhoneNumber: "01712345678", Amount: 9.99, Operator: "robi"}, CodeInvalidAmount},
		{"amount above range", RechargeInput{PhoneNumber: "01712345678", Amount: 5000.01, Operator: "robi"}, CodeInvalidAmount},
		{"non numeric amount", RechargeInput{PhoneNumber: "01712345678", Amount: "ten", Operator: "robi"}, CodeInvalidAmount},
		{"string zero is present but invalid", RechargeInput{PhoneNumber: "01712345678", Amount: "0", Operator: "robi"}, CodeInvalidAmount},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateRecharge(cat, tc.in)
			vErr, ok := AsError(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Equal(t, tc.code, vErr.Code)
		})
	}
}

func TestValidateRechargeUnsupportedOperatorListsKeys(t *testing.T) {
	_, err := ValidateRecharge(testCatalog(), RechargeInput{PhoneNumber: "01712345678", Amount: 50.0, Operator: "Jio"})
	vErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "Unsupported operator: Jio", vErr.Message)
	assert.Equal(t, []string{"grameenphone", "robi", "banglalink", "airtel", "teletalk"}, vErr.SupportedOperators)
}

func TestValidateRechargeAccepts(t *testing.T) {
	cat := testCatalog()

	for _, amount := range []any{10.0, 5000.0, "100", json.Number("250.5")} {
		req, err := ValidateRecharge(cat, RechargeInput{
			PhoneNumber: "+8801812345678",
			Amount:      amount,
			Operator:    "GrameenPhone",
			PackageID:   "PKG1",
		})
		require.NoError(t, err)
		assert.Equal(t, "GP", req.Operator.Code)
		assert.Equal(t, "PKG1", req.PackageID)
	}
}

func TestValidPhoneNumber(t *testing.T) {
	valid := []string{"01712345678", "8801912345678", "+8801312345678"}
	invalid := []string{"123", "01212345678", "0171234567", "017123456789", "+88017123456789", "01712345a78"}

	for _, phone := range valid {
		assert.True(t, ValidPhoneNumber(phone), phone)
	}
	for _, phone := range invalid {
		assert.False(t, ValidPhoneNumber(phone), phone)
	}
}

func TestValidateBillPayment(t *testing.T) {
	cat := testCatalog()

	_, err := ValidateBillPayment(cat, BillPaymentInput{ProviderCode: "DESCO", AccountNumber: "A1", Amount: 100.0})
	vErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeMissingRequiredFields, vErr.Code)
	assert.Equal(t, "Provider code, account number, customer name, and amount are required", vErr.Message)

	_, err = ValidateBillPayment(cat, BillPaymentInput{ProviderCode: "desco", AccountNumber: "A1", CustomerName: "Rahim", Amount: 100.0})
	vErr, ok = AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidProvider, vErr.Code)
	assert.Equal(t, "Invalid provider code", vErr.Message)

	_, err = ValidateBillPayment(cat, BillPaymentInput{ProviderCode: "BTCL", AccountNumber: "A1", CustomerName: "Rahim", Amount: 99.0})
	vErr, ok = AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidAmount, vErr.Code)
	assert.Equal(t, "Amount must be between 100 and 10000 BDT for BTCL", vErr.Message)

	req, err := ValidateBillPayment(cat, BillPaymentInput{ProviderCode: "DESCO", AccountNumber: "A1", CustomerName: "Rahim", Amount: "1000", Note: "march"})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, req.Amount)
	assert.Equal(t, "DESCO", req.Provider.Code)
	assert.Equal(t, "march", req.Note)
}

func TestValidateBillPaymentBoundsAreInclusive(t *testing.T) {
	cat := testCatalog()
	for _, amount := range []float64{50, 50000} {
		_, err := ValidateBillPayment(cat, BillPaymentInput{ProviderCode: "DESCO", AccountNumber: "A1", CustomerName: "R", Amount: amount})
		assert.NoError(t, err)
	}
}

func TestValidateBalance(t *testing.T) {
	err := ValidateBalance("01712345678", "")
	vErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "Missing required fields: phone_number, operator", vErr.Message)
	assert.NoError(t, ValidateBalance("01712345678", "unknown-op"))
}

func TestValidateAccountLookup(t *testing.T) {
	cat := testCatalog()

	_, err := ValidateAccountLookup(cat, "WASA", " ")
	vErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeMissingRequiredFields, vErr.Code)

	_, err = ValidateAccountLookup(cat, "XYZ", "A1")
	vErr, ok = AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidProvider, vErr.Code)

	p, err := ValidateAccountLookup(cat, "WASA", "A1")
	require.NoError(t, err)
	assert.Equal(t, "WASA", p.Code)
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{12.5, 12.5, true},
		{"  42 ", 42, true},
		{json.Number("7"), 7, true},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"12abc", 0, false},
		{true, 0, false},
		{nil, 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseAmount(tc.in)
		assert.Equal(t, tc.ok, ok, "%v", tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got)
		}
	}
}
