package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-stepform/pkg/field"
)

// Amount is a decimal as the backend serialises it. Both JSON strings and
// numbers are accepted.
type Amount string

// UnmarshalJSON accepts "12.50" and 12.5 alike.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("api: amount: %w", err)
	}
	*a = Amount(n.String())
	return nil
}

// CustomExpense is a user-defined expense line.
type CustomExpense struct {
	ID     int64  `json:"id,omitempty"`
	Amount Amount `json:"amount"`
	Notes  string `json:"notes"`
	Type   string `json:"type"`
}

// CommonExpense is one entry of the common expenses record.
type CommonExpense struct {
	Name        string
	DisplayName string
	Value       string
}

// CommonExpenses is the single common expenses record of a return.
type CommonExpenses struct {
	ID       string
	Expenses []CommonExpense
}

// ExpenseService wraps the common and custom expense endpoints.
type ExpenseService struct {
	client *Client
}

// NewExpenseService binds the service to client.
func NewExpenseService(client *Client) *ExpenseService {
	return &ExpenseService{client: client}
}

func commonPath(year, id string) string {
	path := fmt.Sprintf("/api/returns/%s/expenses/common/", url.PathEscape(year))
	if id != "" {
		path += url.PathEscape(id) + "/"
	}
	return path
}

func customPath(year string, id int64) string {
	path := fmt.Sprintf("/api/returns/%s/expenses/custom/", url.PathEscape(year))
	if id != 0 {
		path += strconv.FormatInt(id, 10) + "/"
	}
	return path
}

// DisplayName turns a snake_case key into its label, e.g.
// "medical_bills" becomes "medical bills".
func DisplayName(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

// CommonExpenses fetches the common expenses record for year. Keys other than
// id become entries, sorted by name.
func (s *ExpenseService) CommonExpenses(ctx context.Context, year string) (CommonExpenses, error) {
	var records []field.Values
	if err := s.client.Get(ctx, commonPath(year, ""), &records); err != nil {
		return CommonExpenses{}, err
	}
	if len(records) == 0 {
		return CommonExpenses{}, fmt.Errorf("api: no common expenses for %s", year)
	}
	record := records[0]
	out := CommonExpenses{ID: record.String("id")}
	keys := make([]string, 0, len(record))
	for key := range record {
		if key != "id" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		out.Expenses = append(out.Expenses, CommonExpense{
			Name:        key,
			DisplayName: DisplayName(key),
			Value:       record.String(key),
		})
	}
	return out, nil
}

// SaveCommonExpenses patches the common expenses record.
func (s *ExpenseService) SaveCommonExpenses(ctx context.Context, year, id string, values Form) error {
	return s.client.Patch(ctx, commonPath(year, id), values, nil)
}

// CustomExpenses lists the custom expenses for year.
func (s *ExpenseService) CustomExpenses(ctx context.Context, year string) ([]CustomExpense, error) {
	var out []CustomExpense
	if err := s.client.Get(ctx, customPath(year, 0), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveExpense creates the expense when it has no id and patches it otherwise.
// The stored expense is returned.
func (s *ExpenseService) SaveExpense(ctx context.Context, year string, expense CustomExpense) (CustomExpense, error) {
	form := Form{
		"amount": string(expense.Amount),
		"notes":  expense.Notes,
		"type":   expense.Type,
	}
	var saved CustomExpense
	var err error
	if expense.ID == 0 {
		err = s.client.Post(ctx, customPath(year, 0), form, &saved)
	} else {
		err = s.client.Patch(ctx, customPath(year, expense.ID), form, &saved)
	}
	if err != nil {
		return CustomExpense{}, err
	}
	return saved, nil
}

// DeleteExpense removes a custom expense.
func (s *ExpenseService) DeleteExpense(ctx context.Context, year string, id int64) error {
	return s.client.Delete(ctx, customPath(year, id))
}
