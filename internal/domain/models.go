package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is either a deposit or a withdrawal. There is no third
// kind; anything that is not recognizably a withdrawal counts as a deposit.
type TransactionType string

const (
	TypeDeposit    TransactionType = "deposit"
	TypeWithdrawal TransactionType = "withdrawal"
)

// Role of a registered user. Only admins may import and sync.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleInvestor Role = "investor"
)

// Holding is a quantity of one asset symbol owned, plus live price data
// once the price service has run. Symbol is the natural key, always
// uppercase and trimmed.
type Holding struct {
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name"`
	Amount       decimal.Decimal `json:"amount"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	Value        decimal.Decimal `json:"value"` // Amount * CurrentPrice
}

// Transaction is a single deposit or withdrawal event. UserName holds the
// free-text name from the spreadsheet; UserID is filled in when the name
// has been matched against a stored profile.
type Transaction struct {
	ID          string          `json:"id"`
	UserName    string          `json:"user_name,omitempty"`
	UserID      string          `json:"user_id,omitempty"`
	Date        time.Time       `json:"date"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`

	// DateDefaulted is true when the source cell was missing or
	// unparseable and the date fell back to the import time.
	DateDefaulted bool `json:"-"`
}

// HistoryRecord is a per-user, per-date snapshot of portfolio value and
// cumulative invested amount, produced by unpivoting the wide history
// sheet.
type HistoryRecord struct {
	Date     time.Time       `json:"date"`
	UserName string          `json:"user_name,omitempty"`
	UserID   string          `json:"user_id,omitempty"`
	Value    decimal.Decimal `json:"value"`
	Invested decimal.Decimal `json:"invested"`
}

// Profile is a registered user's identity, owned by the identity service
// and consumed read-only here.
type Profile struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}

// PortfolioData is the in-memory result of one workbook import. Every sync
// replaces the stored state with one of these wholesale.
type PortfolioData struct {
	Holdings     []Holding       `json:"holdings"`
	Transactions []Transaction   `json:"transactions"`
	History      []HistoryRecord `json:"history"`
}
