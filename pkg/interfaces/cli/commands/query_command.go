package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
)

func newQueryCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Call one of the query functions",
	}
	cmd.AddCommand(
		queryCommand(g, "raw-from-product <product>", "Raw materials needed per unit of a product", cobra.ExactArgs(1), "raw_from_product",
			func(ctx context.Context, app *App, args []string) (interface{}, error) {
				return app.Tools.RawFromProduct(ctx, entities.MaterialID(args[0]))
			}),
		queryCommand(g, "product-from-raw <raw>", "Finished products using a raw material", cobra.ExactArgs(1), "product_from_raw",
			func(ctx context.Context, app *App, args []string) (interface{}, error) {
				return app.Tools.ProductFromRaw(ctx, entities.MaterialID(args[0]))
			}),
		queryCommand(g, "revenue-risk <raw> <shortfall>", "Revenue at risk from a raw material shortfall", cobra.ExactArgs(2), "revenue_risk",
			func(ctx context.Context, app *App, args []string) (interface{}, error) {
				shortfall, err := strconv.ParseInt(args[1], 10, 64)
				if err != nil {
					return nil, fmt.Errorf("shortfall %q is not an integer: %w", args[1], entities.ErrInvalidArgument)
				}
				return app.Tools.RevenueRisk(ctx, entities.MaterialID(args[0]), entities.Quantity(shortfall))
			}),
		newDemandQueryCommand(g),
		newEmailQueryCommand(g),
		queryCommand(g, "ask <question>", "Route a natural language question to a query function", cobra.MinimumNArgs(1), "ask_genie_pharma_gsc",
			func(ctx context.Context, app *App, args []string) (interface{}, error) {
				return app.Genie.Ask(ctx, strings.Join(args, " "))
			}),
	)
	return cmd
}

type queryFunc func(ctx context.Context, app *App, args []string) (interface{}, error)

func queryCommand(g *globalFlags, use, short string, positional cobra.PositionalArgs, name string, fn queryFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  positional,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(ctx context.Context, app *App) error {
				result, err := fn(ctx, app, args)
				if err != nil {
					return err
				}
				return render(cmd, g, name, result)
			})
		},
	}
}

func newDemandQueryCommand(g *globalFlags) *cobra.Command {
	var wholesaler string
	cmd := queryCommand(g, "demand <product>", "Historical and forecasted demand of a product", cobra.ExactArgs(1), "lookup_product_demand",
		func(ctx context.Context, app *App, args []string) (interface{}, error) {
			return app.Tools.LookupProductDemand(ctx, entities.MaterialID(args[0]), wholesaler)
		})
	cmd.Flags().StringVar(&wholesaler, "wholesaler", "", "restrict to one wholesaler")
	return cmd
}

func newEmailQueryCommand(g *globalFlags) *cobra.Command {
	var k int
	cmd := queryCommand(g, "emails <query>", "Semantic search over the supplier emails", cobra.MinimumNArgs(1), "query_unstructured_emails",
		func(ctx context.Context, app *App, args []string) (interface{}, error) {
			return app.Tools.QueryEmails(ctx, strings.Join(args, " "), k)
		})
	cmd.Flags().IntVarP(&k, "top-k", "k", 0, "number of matches (default emails.top_k)")
	return cmd
}
