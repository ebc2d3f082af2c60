package validation

import (
	"fmt"
	"regexp"
	"strings"

	catalogdomain "github.com/smallbiznis/rechargemock/internal/catalog/domain"
)

const (
	RechargeMinAmount = 10
	RechargeMaxAmount = 5000
)

var phonePattern = regexp.MustCompile(`^(\+8801|8801|01)[3-9]\d{8}$`)

// OperatorCatalog is the part of the catalog recharge validation needs.
type OperatorCatalog interface {
	LookupOperator(key string) (catalogdomain.Operator, bool)
	OperatorKeys() []string
}

// ProviderCatalog is the part of the catalog bill payment validation needs.
type ProviderCatalog interface {
	ProviderByCode(code string) (catalogdomain.BillProvider, bool)
}

type RechargeInput struct {
	PhoneNumber string
	Amount      any
	Operator    string
	PackageID   string
}

type RechargeRequest struct {
	PhoneNumber string
	Amount      float64
	Operator    catalogdomain.Operator
	PackageID   string
}

type BillPaymentInput struct {
	ProviderCode  string
	AccountNumber string
	CustomerName  string
	Amount        any
	CustomerPhone string
	Note          string
}

type BillPaymentRequest struct {
	Provider      catalogdomain.BillProvider
	AccountNumber string
	CustomerName  string
	Amount        float64
	CustomerPhone string
	Note          string
}

// ValidPhoneNumber reports whether phone is a Bangladesh mobile number.
func ValidPhoneNumber(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidateRecharge checks, in order: required fields, operator, phone format
// and amount bounds. The first failing rule is returned.
func ValidateRecharge(operators OperatorCatalog, in RechargeInput) (RechargeRequest, error) {
	if in.PhoneNumber == "" || amountMissing(in.Amount) || in.Operator == "" {
		return RechargeRequest{}, newError(CodeMissingRequiredFields,
			"Missing required fields: phone_number, amount, operator")
	}

	op, ok := operators.LookupOperator(in.Operator)
	if !ok {
		return RechargeRequest{}, &Error{
			Code:               CodeUnsupportedOperator,
			Message:            "Unsupported operator: " + in.Operator,
			SupportedOperators: operators.OperatorKeys(),
		}
	}

	if !ValidPhoneNumber(in.PhoneNumber) {
		return RechargeRequest{}, newError(CodeInvalidPhoneFormat,
			"Invalid phone number format. Please use Bangladesh mobile number format.")
	}

	amount, ok := ParseAmount(in.Amount)
	if !ok || amount < RechargeMinAmount || amount > RechargeMaxAmount {
		return RechargeRequest{}, newError(CodeInvalidAmount,
			fmt.Sprintf("Invalid amount. Amount should be between %d and %d BDT.", RechargeMinAmount, RechargeMaxAmount))
	}

	return RechargeRequest{
		PhoneNumber: in.PhoneNumber,
		Amount:      amount,
		Operator:    op,
		PackageID:   in.PackageID,
	}, nil
}

// ValidateBillPayment checks, in order: required fields, provider code and
// the provider's amount bounds.
func ValidateBillPayment(providers ProviderCatalog, in BillPaymentInput) (BillPaymentRequest, error) {
	if in.ProviderCode == "" || in.AccountNumber == "" || in.CustomerName == "" || amountMissing(in.Amount) {
		return BillPaymentRequest{}, newError(CodeMissingRequiredFields,
			"Provider code, account number, customer name, and amount are required")
	}

	provider, ok := providers.ProviderByCode(in.ProviderCode)
	if !ok {
		return BillPaymentRequest{}, newError(CodeInvalidProvider, "Invalid provider code")
	}

	amount, ok := ParseAmount(in.Amount)
	if !ok || !provider.InRange(amount) {
		return BillPaymentRequest{}, newError(CodeInvalidAmount,
			fmt.Sprintf("Amount must be between %s and %s BDT for %s",
				formatAmount(provider.MinAmount), formatAmount(provider.MaxAmount), provider.Name))
	}

	return BillPaymentRequest{
		Provider:      provider,
		AccountNumber: in.AccountNumber,
		CustomerName:  in.CustomerName,
		Amount:        amount,
		CustomerPhone: in.CustomerPhone,
		Note:          in.Note,
	}, nil
}

// ValidateBalance only requires both fields; the operator may be unknown.
func ValidateBalance(phoneNumber, operator string) error {
	if phoneNumber == "" || operator == "" {
		return newError(CodeMissingRequiredFields, "Missing required fields: phone_number, operator")
	}
	return nil
}

// ValidateAccountLookup checks a bill account verification request.
func ValidateAccountLookup(providers ProviderCatalog, providerCode, accountNumber string) (catalogdomain.BillProvider, error) {
	if providerCode == "" || strings.TrimSpace(accountNumber) == "" {
		return catalogdomain.BillProvider{}, newError(CodeMissingRequiredFields,
			"Provider code and account number are required")
	}
	provider, ok := providers.ProviderByCode(providerCode)
	if !ok {
		return catalogdomain.BillProvider{}, newError(CodeInvalidProvider, "Invalid provider code")
	}
	return provider, nil
}
