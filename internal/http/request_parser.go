package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"kakeibo/internal/core"
)

// maxBodySize caps JSON request bodies at 1 MiB.
const maxBodySize = 1 << 20

// transactionPayload is the wire shape of a transaction draft. Amount is a
// decimal string ("12.34"); dates are "2006-01-02".
type transactionPayload struct {
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	Category      string `json:"category"`
	Date          string `json:"date"`
	Note          string `json:"note"`
	PaymentMethod string `json:"paymentMethod"`
	Photo         string `json:"photo"`
}

func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodySize)
	defer body.Close()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return fmt.Errorf("%w: empty request body", core.ErrValidation)
		}
		return fmt.Errorf("%w: %v", core.ErrValidation, err)
	}
	return nil
}

// parseDraft converts a wire payload into a validated draft.
func parseDraft(p transactionPayload) (core.TransactionDraft, error) {
	amount, err := core.ParseMoney(p.Amount)
	if err != nil {
		return core.TransactionDraft{}, err
	}
	date, err := core.ParseDate(strings.TrimSpace(p.Date))
	if err != nil {
		return core.TransactionDraft{}, err
	}

	method := core.PaymentMethod(p.PaymentMethod)
	if p.PaymentMethod == "" {
		method = core.PayCash
	}

	return core.TransactionDraft{
		Type:          core.TransactionType(p.Type),
		Amount:        amount,
		Category:      strings.TrimSpace(p.Category),
		Date:          date,
		Note:          sanitizeInput(p.Note),
		PaymentMethod: method,
		Photo:         strings.TrimSpace(p.Photo),
	}, nil
}

// confirmed reports whether the request carries an explicit confirm flag.
func confirmed(r *http.Request) bool {
	return strings.EqualFold(r.URL.Query().Get("confirm"), "true")
}

// sanitizeInput trims whitespace and strips control characters except tab,
// newline, and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
