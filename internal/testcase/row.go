// Package testcase derives a functional test-case catalogue from an API description.
package testcase

import "strconv"

// Header is the column order of every exported catalogue.
var Header = []string{
	"S.No",
	"Module",
	"Test Case Description",
	"HTTP Method",
	"Endpoint",
	"Headers",
	"Content-Type",
	"Requires Auth",
	"Request Body",
	"Expected Status",
	"Expected Result",
	"Test Type",
	"Priority",
	"Role",
	"Preconditions",
}

// Test types.
const (
	TypePositive    = "Positive"
	TypeRole        = "Role-Based"
	TypeSecurity    = "Security"
	TypeValidation  = "Validation"
	TypeBoundary    = "Boundary"
	TypeNegative    = "Negative"
	TypePerformance = "Performance"
)

// Priorities.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// Row is one test case.
type Row struct {
	SerialNo       int
	Module         string
	Description    string
	Method         string
	Endpoint       string
	Headers        string
	ContentType    string
	RequiresAuth   bool
	RequestBody    string
	ExpectedStatus int
	ExpectedResult string
	TestType       string
	Priority       string
	Role           string
	Preconditions  string
}

// Record returns the row's fields in Header order.
func (r Row) Record() []string {
	auth := "No"
	if r.RequiresAuth {
		auth = "Yes"
	}
	return []string{
		strconv.Itoa(r.SerialNo),
		r.Module,
		r.Description,
		r.Method,
		r.Endpoint,
		r.Headers,
		r.ContentType,
		auth,
		r.RequestBody,
		strconv.Itoa(r.ExpectedStatus),
		r.ExpectedResult,
		r.TestType,
		r.Priority,
		r.Role,
		r.Preconditions,
	}
}

// ledger accumulates rows and hands out serial numbers. It is passed by value
// through the derivation so every step is a plain function of its input.
type ledger struct {
	next int
	rows []Row
}

func newLedger() ledger {
	return ledger{next: 1}
}

func (l ledger) add(rows ...Row) ledger {
	for _, r := range rows {
		r.SerialNo = l.next
		l.next++
		l.rows = append(l.rows, r)
	}
	return l
}
