package models

import (
	"fmt"
	"time"
)

type LoanType string

const (
	LoanBridging     LoanType = "bridging"
	LoanShortTerm    LoanType = "short-term"
	LoanAssetFinance LoanType = "asset-finance"
	LoanLogbook      LoanType = "logbook"
	LoanBusiness     LoanType = "business"
)

var loanTypeLabels = map[LoanType]string{
	LoanBridging:     "Bridging Loan",
	LoanShortTerm:    "Short Term Loan",
	LoanAssetFinance: "Asset Finance",
	LoanLogbook:      "Logbook Loan",
	LoanBusiness:     "Business Loan",
}

func (t LoanType) Valid() bool {
	_, ok := loanTypeLabels[t]
	return ok
}

// Label is the product name shown to applicants.
func (t LoanType) Label() string {
	if l, ok := loanTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

type SecurityType string

const (
	SecurityLandTitle    SecurityType = "land-title"
	SecurityMotorVehicle SecurityType = "motor-vehicle"
	SecurityShares       SecurityType = "shares"
	SecurityGuarantor    SecurityType = "guarantor"
	SecurityOther        SecurityType = "other"
)

func (t SecurityType) Valid() bool {
	switch t {
	case SecurityLandTitle, SecurityMotorVehicle, SecurityShares, SecurityGuarantor, SecurityOther:
		return true
	}
	return false
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"

	// StatusAll is accepted by filters only.
	StatusAll Status = "all"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if st.Valid() || st == StatusAll {
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Document is an attachment; Content is base64.
type Document struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

type LoanApplication struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	IDNumber     string       `json:"idNumber"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone"`
	LoanType     LoanType     `json:"loanType"`
	SecurityType SecurityType `json:"securityType"`
	// Amount is always the formatted AmountValue.
	Amount      string     `json:"amount"`
	AmountValue float64    `json:"amountValue"`
	Message     string     `json:"message,omitempty"`
	Documents   []Document `json:"documents"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewApplication carries the applicant-supplied fields of a submission.
type NewApplication struct {
	Name         string       `json:"name"`
	IDNumber     string       `json:"idNumber"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone"`
	LoanType     LoanType     `json:"loanType"`
	SecurityType SecurityType `json:"securityType"`
	AmountValue  float64      `json:"amountValue"`
	Message      string       `json:"message"`
	Documents    []Document   `json:"documents"`
}

// ApplicationPatch lists the fields an edit may change. Nil means keep.
// When Amount is set it wins over AmountValue.
type ApplicationPatch struct {
	Name         *string       `json:"name,omitempty"`
	IDNumber     *string       `json:"idNumber,omitempty"`
	Email        *string       `json:"email,omitempty"`
	Phone        *string       `json:"phone,omitempty"`
	LoanType     *LoanType     `json:"loanType,omitempty"`
	SecurityType *SecurityType `json:"securityType,omitempty"`
	Amount       *string       `json:"amount,omitempty"`
	AmountValue  *float64      `json:"amountValue,omitempty"`
	Message      *string       `json:"message,omitempty"`
	Documents    []Document    `json:"documents,omitempty"`
	Status       *Status       `json:"status,omitempty"`
}

// Stats summarizes all applications; amounts are formatted currency.
type Stats struct {
	Total       int    `json:"total"`
	Pending     int    `json:"pending"`
	Approved    int    `json:"approved"`
	Rejected    int    `json:"rejected"`
	TotalAmount string `json:"totalAmount"`
	AvgAmount   string `json:"avgAmount"`
}
