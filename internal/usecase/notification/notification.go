// Package notification renders client-facing messages for resolved loans.
package notification

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"atm-ledger/internal/domain/account"
	"atm-ledger/internal/domain/loan"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	currencySymbol = "₱"
	dateLayout     = "Monday, January 2, 2006"
)

type Message struct {
	LoanNumber    int             `json:"loan_number"`
	State         loan.State      `json:"state"`
	Amount        decimal.Decimal `json:"amount"`
	DateRequested time.Time       `json:"date_requested"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	Text          string          `json:"text"`
}

const approvedTemplate = `Dear %s,

    We have received your loan request of %s, requested on %s.
The loan amount has been added to your balance. You must pay it before %s.
Thank you very much.

Admin`

const declinedTemplate = `Dear %s,

    We got your loan request of %s, on %s.
Your loan request was refused because you still have an outstanding loan that
has not been paid. Please settle your loans first.
Thank you very much.

Admin`

var printer = message.NewPrinter(language.English)

// FormatAmount renders d as pesos with thousands separators and two decimals,
// without passing through float64.
func FormatAmount(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	whole, frac, _ := strings.Cut(d.Abs().StringFixed(2), ".")
	return sign + currencySymbol + groupThousands(whole) + "." + frac
}

func groupThousands(digits string) string {
	if u, err := strconv.ParseUint(digits, 10, 64); err == nil {
		return printer.Sprint(number.Decimal(u))
	}
	// x/text only takes machine integers exactly
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	var b strings.Builder
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func FormatDate(t time.Time) string { return t.Format(dateLayout) }

// Render returns the message text for a resolved loan. Pending loans have no
// message and yield loan.ErrStillPending.
func Render(l *loan.Loan, a *account.Account) (string, error) {
	name := a.Holder.FullName()
	switch l.State {
	case loan.StateApproved:
		return fmt.Sprintf(approvedTemplate, name, FormatAmount(l.Amount), FormatDate(l.DateRequested), FormatDate(l.DueDate())), nil
	case loan.StateDeclined:
		return fmt.Sprintf(declinedTemplate, name, FormatAmount(l.Amount), FormatDate(l.DateRequested)), nil
	default:
		return "", loan.ErrStillPending
	}
}

// Build projects a resolved loan into a Message.
func Build(l *loan.Loan, a *account.Account) (Message, error) {
	text, err := Render(l, a)
	if err != nil {
		return Message{}, err
	}
	m := Message{
		LoanNumber:    l.LoanNumber,
		State:         l.State,
		Amount:        l.Amount,
		DateRequested: l.DateRequested,
		Text:          text,
	}
	if l.State == loan.StateApproved {
		due := l.DueDate()
		m.DueDate = &due
	}
	return m, nil
}
