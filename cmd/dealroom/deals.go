package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spec-kit/dealroom-client/internal/domain"
	"github.com/spec-kit/dealroom-client/internal/service"
	"github.com/spec-kit/dealroom-client/pkg/util"
)

func newDealsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deals",
		Short: "Browse and manage deals",
	}
	cmd.AddCommand(
		newDealsListCmd(),
		newDealsCreateCmd(),
		newDealsShowCmd(),
		newDealsStatusCmd(),
	)
	return cmd
}

func newDealsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List deals",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			deals, err := a.deals.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(deals) == 0 {
				fmt.Println("No deals found. Run `dealroom deals create` to start one.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tPRICE\tSTATUS\tSELLER")
			for _, deal := range deals {
				fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n",
					deal.ID, deal.Title, deal.Price, deal.Status, deal.Seller)
			}
			return w.Flush()
		},
	}
}

func newDealsCreateCmd() *cobra.Command {
	var title, description string
	var price float64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new deal",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			deal, err := a.deals.Create(cmd.Context(), service.CreateDealInput{
				Title:       title,
				Description: description,
				Price:       price,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Deal created: %s (%s)\n", deal.ID, deal.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "deal title")
	cmd.Flags().StringVar(&description, "description", "", "deal description")
	cmd.Flags().Float64Var(&price, "price", 0, "deal price")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newDealsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <deal-id>",
		Short: "Show one deal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			deal, err := a.deals.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Title:       %s\n", deal.Title)
			fmt.Printf("Description: %s\n", deal.Description)
			fmt.Printf("Price:       %.2f\n", deal.Price)
			fmt.Printf("Seller:      %s\n", deal.Seller)
			fmt.Printf("Status:      %s\n", deal.Status)

			// status actions are a seller affordance; the backend still has
			// the final say either way
			if sess, ok := a.sessions.Current(); ok && sess.Role == domain.RoleSeller {
				next := domain.AllowedTransitions(deal.Status, sess.Role)
				if len(next) > 0 {
					names := make([]string, len(next))
					for i, status := range next {
						names[i] = string(status)
					}
					fmt.Printf("Available:   %s\n", strings.Join(names, ", "))
				}
			}
			return nil
		},
	}
}

func newDealsStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <deal-id> <new-status>",
		Short: "Move a deal to a new status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			target, err := domain.ParseStatus(args[1])
			if err != nil {
				return util.NewValidationError(err.Error(), nil)
			}

			deal, err := a.deals.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			updated, err := a.deals.ApplyTransition(cmd.Context(), deal.ID, deal.Status, target)
			if err != nil {
				return err
			}
			fmt.Printf("Deal %s is now %s\n", updated.ID, updated.Status)
			return nil
		},
	}
}
