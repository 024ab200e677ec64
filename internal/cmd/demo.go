package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/RoyceAzure/lab/parkeat/internal/appcontext"
	"github.com/RoyceAzure/lab/parkeat/internal/infra/kv"
	"github.com/RoyceAzure/lab/parkeat/internal/model"
	"github.com/RoyceAzure/lab/parkeat/internal/service"
	"github.com/spf13/cobra"
)

type demoOptions struct {
	username string
	password string
	storeID  string
	table    string
	payment  string
	interval time.Duration
	fast     bool
}

func newDemoCmd(root *rootOptions) *cobra.Command {
	opts := &demoOptions{}
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Walk through login, cart, checkout and order progress",
		Long: `Run a scripted order against an in-memory state: log in with the demo
account, fill the cart with the popular products of a store, check out and
print every status change until the order is delivered.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, l, err := loadConfig(root, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			cfg := *manager.Get()
			cfg.Kafka.Enabled = false
			cfg.Order.ProgressInterval = opts.interval
			if opts.fast {
				cfg.Session.AuthDelay = 0
				cfg.Checkout.PaymentDelay = 0
			}

			app, err := appcontext.NewApplicationContext(cmd.Context(), &cfg, l, appcontext.WithStore(kv.NewMemoryStore()))
			if err != nil {
				return err
			}
			defer app.Shutdown(context.Background())

			return runDemo(cmd.Context(), cmd.OutOrStdout(), app, opts)
		},
	}
	cmd.Flags().StringVar(&opts.username, "username", "paco", "demo account username")
	cmd.Flags().StringVar(&opts.password, "password", "12345", "demo account password")
	cmd.Flags().StringVar(&opts.storeID, "store", "store-1", "store to order from")
	cmd.Flags().StringVar(&opts.table, "table", "A12", "table code")
	cmd.Flags().StringVar(&opts.payment, "payment", string(model.PaymentMethodCard), "payment method")
	cmd.Flags().DurationVar(&opts.interval, "interval", time.Second, "order progress interval")
	cmd.Flags().BoolVar(&opts.fast, "fast", false, "skip artificial auth and payment delays")
	return cmd
}

// statusPrinter 印出狀態變化，delivered 或 cancelled 時關閉 done
type statusPrinter struct {
	out  io.Writer
	done chan struct{}
}

func (p *statusPrinter) OnOrderCreated(ctx context.Context, order *model.Order) {
	fmt.Fprintf(p.out, "order %s created (%s)\n", order.ID, model.OrderStatusLabels[order.Status])
}

func (p *statusPrinter) OnOrderStatusChanged(ctx context.Context, order *model.Order, from model.OrderStatus) {
	fmt.Fprintf(p.out, "order %s: %s -> %s\n", order.ID, from, order.Status)
	if order.Status.IsTerminal() {
		close(p.done)
	}
}

func runDemo(ctx context.Context, out io.Writer, app *appcontext.ApplicationContext, opts *demoOptions) error {
	result, err := app.SessionService.Login(ctx, opts.username, opts.password)
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("login failed: %s", result.Error)
	}
	user := app.SessionService.CurrentUser()
	fmt.Fprintf(out, "logged in as %s (%s)\n", user.Name, user.Username)

	store, ok := app.Catalog.StoreByID(opts.storeID)
	if !ok {
		return fmt.Errorf("%w: %s", service.ErrStoreNotFound, opts.storeID)
	}
	for _, product := range store.Products {
		if !product.IsPopular || !product.IsAvailable {
			continue
		}
		if _, err := app.CartService.AddToCart(ctx, store.Name, product, 1, ""); err != nil {
			return err
		}
		fmt.Fprintf(out, "added %s (%s)\n", product.Name, product.Price.StringFixed(2))
	}
	if _, err := app.CartService.SetTableCode(ctx, opts.table); err != nil {
		return err
	}

	summary := app.CartService.Summary()
	fmt.Fprintf(out, "cart: %d items, subtotal %s, service fee %s, total %s\n",
		summary.ItemCount,
		summary.Subtotal.StringFixed(2),
		summary.ServiceFee.StringFixed(2),
		summary.Total.StringFixed(2))

	printer := &statusPrinter{out: out, done: make(chan struct{})}
	app.OrderService.AddObserver(printer)

	order, err := app.CheckoutService.Checkout(ctx, service.CheckoutRequest{PaymentMethod: model.PaymentMethod(opts.payment)})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "paid %s with %s at table %s\n", order.Total.StringFixed(2), model.PaymentMethodLabels[order.PaymentMethod], order.TableCode)

	select {
	case <-printer.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	fmt.Fprintf(out, "notifications (%d unread):\n", app.NotificationService.UnreadCount())
	for _, n := range app.NotificationService.Notifications() {
		if n.Data == nil || n.Data.OrderID != order.ID {
			continue
		}
		fmt.Fprintf(out, "  - %s: %s\n", n.Title, n.Message)
	}
	return nil
}
