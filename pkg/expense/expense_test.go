package expense_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-stepform/pkg/api"
	"github.com/goliatone/go-stepform/pkg/expense"
	"github.com/goliatone/go-stepform/pkg/submit"
)

type fakeService struct {
	common      api.CommonExpenses
	commonSaves []api.Form
	custom      []api.CustomExpense
	saveErr     error
	saved       []api.CustomExpense
	deleted     []int64
	nextID      int64
}

func (f *fakeService) CommonExpenses(context.Context, string) (api.CommonExpenses, error) {
	return f.common, nil
}

func (f *fakeService) SaveCommonExpenses(_ context.Context, _ string, _ string, values api.Form) error {
	f.commonSaves = append(f.commonSaves, values)
	return nil
}

func (f *fakeService) CustomExpenses(context.Context, string) ([]api.CustomExpense, error) {
	return append([]api.CustomExpense(nil), f.custom...), nil
}

func (f *fakeService) SaveExpense(_ context.Context, _ string, e api.CustomExpense) (api.CustomExpense, error) {
	f.saved = append(f.saved, e)
	if f.saveErr != nil {
		return api.CustomExpense{}, f.saveErr
	}
	if e.ID == 0 {
		f.nextID++
		e.ID = f.nextID
		f.custom = append(f.custom, e)
	}
	return e, nil
}

func (f *fakeService) DeleteExpense(_ context.Context, _ string, id int64) error {
	f.deleted = append(f.deleted, id)
	out := f.custom[:0]
	for _, e := range f.custom {
		if e.ID != id {
			out = append(out, e)
		}
	}
	f.custom = out
	return nil
}

func TestCommonSaveSkipsWhenUnmodified(t *testing.T) {
	svc := &fakeService{common: api.CommonExpenses{ID: "9", Expenses: []api.CommonExpense{
		{Name: "child_care", DisplayName: "child care", Value: "0.00"},
	}}}
	m, err := expense.NewCommonManager(svc, "2024")
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	ctx := context.Background()
	if err := m.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := expense.InputValue(m.State().Expenses[0]); got != "" {
		t.Fatalf("zero amount must render empty, got %q", got)
	}

	saved, err := m.Save(ctx, api.Form{"child_care": "10"})
	if err != nil || saved {
		t.Fatalf("unmodified save must be skipped, got %v %v", saved, err)
	}
	m.Touch()
	saved, err = m.Save(ctx, api.Form{"child_care": "10"})
	if err != nil || !saved {
		t.Fatalf("expected save, got %v %v", saved, err)
	}
	if diff := cmp.Diff([]api.Form{{"child_care": "10"}}, svc.commonSaves); diff != "" {
		t.Fatalf("save mismatch (-want +got):\n%s", diff)
	}
	state := m.State()
	if state.Modified || !state.Dirty {
		t.Fatalf("expected dirty but not modified after save, got %+v", state)
	}
	if state.Expenses[0].Value != "10" {
		t.Fatalf("saved value not reflected, got %q", state.Expenses[0].Value)
	}
}

func TestCustomAddEditDelete(t *testing.T) {
	svc := &fakeService{}
	m, _ := expense.NewCustomManager(svc, "2024")
	ctx := context.Background()
	if err := m.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !m.State().Empty() {
		t.Fatalf("expected empty list")
	}

	m.OpenNew()
	if err := m.Save(ctx, "25.00", "", "Books"); err != nil {
		t.Fatalf("add: %v", err)
	}
	state := m.State()
	if state.EditorOpen || len(state.Expenses) != 1 {
		t.Fatalf("expected one expense and closed editor, got %+v", state)
	}

	if err := m.Open(0); err != nil {
		t.Fatalf("open: %v", err)
	}
	if m.State().Editing == nil {
		t.Fatalf("expected editing target")
	}
	if err := m.Save(ctx, "30.00", "receipt", "Books"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if got := svc.saved[1].ID; got != 1 {
		t.Fatalf("edit must carry the id, got %d", got)
	}
	if got := m.State().Expenses[0].Amount; got != "30.00" {
		t.Fatalf("edited amount not stored, got %q", got)
	}

	if err := m.Delete(ctx, 0); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if diff := cmp.Diff([]int64{1}, svc.deleted); diff != "" {
		t.Fatalf("delete mismatch (-want +got):\n%s", diff)
	}
	if !m.State().Empty() {
		t.Fatalf("expected empty list after delete")
	}
}

func TestCustomSaveFailureKeepsEditorErrors(t *testing.T) {
	svc := &fakeService{saveErr: &submit.RequestError{
		Status:     400,
		Validation: map[string][]string{"amount": {"A valid number is required."}},
	}}
	m, _ := expense.NewCustomManager(svc, "2024")
	m.OpenNew()
	err := m.Save(context.Background(), "abc", "", "Books")
	var reqErr *submit.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected request error, got %v", err)
	}
	state := m.State()
	if !state.EditorOpen || state.SaveDisabled {
		t.Fatalf("editor must stay open and enabled, got %+v", state)
	}
	if diff := cmp.Diff(map[string][]string{"amount": {"A valid number is required."}}, state.ValidationError); diff != "" {
		t.Fatalf("validation mismatch (-want +got):\n%s", diff)
	}
	m.Close()
	if state := m.State(); state.ValidationError != nil || state.GeneralError != "" {
		t.Fatalf("closing the editor must clear errors, got %+v", state)
	}
}

func TestFrozenManagers(t *testing.T) {
	svc := &fakeService{}
	custom, _ := expense.NewCustomManager(svc, "2024", expense.WithFrozen(true))
	if err := custom.Save(context.Background(), "1", "", "x"); !errors.Is(err, expense.ErrFrozen) {
		t.Fatalf("expected ErrFrozen, got %v", err)
	}
	common, _ := expense.NewCommonManager(svc, "2024", expense.WithFrozen(true))
	common.Touch()
	if _, err := common.Save(context.Background(), api.Form{}); !errors.Is(err, expense.ErrFrozen) {
		t.Fatalf("expected ErrFrozen, got %v", err)
	}
}
