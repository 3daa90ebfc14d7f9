package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-stepform/pkg/api"
	"github.com/goliatone/go-stepform/pkg/expense"
)

var expensesFlags struct {
	year string
}

var expensesCmd = &cobra.Command{
	Use:   "expenses",
	Short: "Show the common and custom expenses of a return",
	Args:  cobra.NoArgs,
	RunE:  runExpenses,
}

func init() {
	expensesCmd.Flags().StringVar(&expensesFlags.year, "year", "", "Return year (overrides return_year)")
}

func runExpenses(cmd *cobra.Command, args []string) error {
	app, err := loadApp()
	if err != nil {
		return err
	}
	year := expensesFlags.year
	if year == "" {
		year = app.Config.ReturnYear
	}
	svc := api.NewExpenseService(app.Client)

	common, err := expense.NewCommonManager(svc, year, expense.WithLogger(app.Logger))
	if err != nil {
		return err
	}
	custom, err := expense.NewCustomManager(svc, year, expense.WithLogger(app.Logger))
	if err != nil {
		return err
	}
	if err := common.Load(cmd.Context()); err != nil {
		return err
	}
	if err := custom.Load(cmd.Context()); err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COMMON\tAMOUNT")
	for _, e := range common.State().Expenses {
		fmt.Fprintf(w, "%s\t%s\n", e.DisplayName, expense.InputValue(e))
	}
	fmt.Fprintln(w)

	state := custom.State()
	if state.Empty() {
		fmt.Fprintln(w, "No custom expenses.")
		return w.Flush()
	}
	fmt.Fprintln(w, "TYPE\tAMOUNT\tNOTES")
	for _, e := range state.Expenses {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Type, e.Amount, e.Notes)
	}
	return w.Flush()
}
