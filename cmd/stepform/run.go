package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-stepform"
	"github.com/goliatone/go-stepform/pkg/onboarding"
	"github.com/goliatone/go-stepform/pkg/renderers/tui"
)

var runFlags struct {
	user      string
	address   string
	spouse    string
	returnID  string
	year      string
	next      string
	openapi   string
	operation string
}

var runCmd = &cobra.Command{
	Use:   "run [flow]",
	Short: "Run a flow in the terminal",
	Long: `Run a flow with interactive prompts and submit it to the API.

The flow is one of the built-in flows, a flow file from flows_dir, or the
request body of an OpenAPI operation given with --openapi and --operation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFlow,
}

func init() {
	runCmd.Flags().StringVar(&runFlags.user, "user", "", "User id")
	runCmd.Flags().StringVar(&runFlags.address, "address", "", "Address id")
	runCmd.Flags().StringVar(&runFlags.spouse, "spouse", "", "Spouse id")
	runCmd.Flags().StringVar(&runFlags.returnID, "return", "", "Tax return id")
	runCmd.Flags().StringVar(&runFlags.year, "year", "", "Return year (overrides return_year)")
	runCmd.Flags().StringVar(&runFlags.next, "next", "", "Page to report once the flow submits")
	runCmd.Flags().StringVar(&runFlags.openapi, "openapi", "", "OpenAPI document path or URL")
	runCmd.Flags().StringVar(&runFlags.operation, "operation", "", "OpenAPI operation id to build the flow from")
}

func runFlow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var extra []onboarding.Definition
	name := ""
	if len(args) == 1 {
		name = args[0]
	}
	if runFlags.openapi != "" {
		if runFlags.operation == "" {
			return errors.New("--operation is required with --openapi")
		}
		def, err := stepform.LoadOpenAPIDefinition(ctx, runFlags.openapi, runFlags.operation)
		if err != nil {
			return err
		}
		extra = append(extra, def)
		if name == "" {
			name = def.Name
		}
	}
	if name == "" {
		return errors.New("a flow name is required")
	}

	app, err := loadApp(extra...)
	if err != nil {
		return err
	}
	if !app.Catalog.Has(name) {
		return fmt.Errorf("unknown flow %q (known: %v)", name, app.Catalog.Names())
	}

	target, err := app.RunFlow(ctx, name, onboarding.Params{
		UserID:     runFlags.user,
		AddressID:  runFlags.address,
		SpouseID:   runFlags.spouse,
		ReturnID:   runFlags.returnID,
		ReturnYear: runFlags.year,
		NextPage:   runFlags.next,
	}, tui.WithOutput(cmd.OutOrStdout()))
	if errors.Is(err, tui.ErrAborted) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Aborted.")
		return nil
	}
	if err != nil {
		return err
	}

	if target == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "Submitted.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Next page: %s\n", target)
	return nil
}
