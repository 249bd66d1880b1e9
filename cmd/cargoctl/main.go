// cargoctl drives the dashboard client from the command line: it fetches
// orders and currency rates through the same store, reducers and projections
// the graphical dashboard would use, and prints the resulting views.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/lisenok-cargo/cargomanager/internal/config"
	"github.com/lisenok-cargo/cargomanager/internal/dashboard"
	"github.com/lisenok-cargo/cargomanager/internal/dashboard/api"
	"github.com/lisenok-cargo/cargomanager/internal/dashboard/refresh"
	"github.com/lisenok-cargo/cargomanager/internal/dashboard/state"
	"github.com/lisenok-cargo/cargomanager/internal/dashboard/view"
	"github.com/lisenok-cargo/cargomanager/internal/models/order"
	"github.com/lisenok-cargo/cargomanager/pkg/logger"
	"github.com/shopspring/decimal"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	baseURL := flag.String("url", "", "API server base URL, overrides the configured one")
	search := flag.String("search", "", "free-text order filter")
	status := flag.String("status", "", "order status filter")
	sortBy := flag.String("sort", "date-desc", "date-asc|date-desc|amount-asc|amount-desc")
	query := flag.String("query", "", "raw route query string, e.g. status=active")
	interval := flag.Duration("interval", 0, "refresh interval for watch, overrides the configured one")

	// MustLoad parses the flags along with its own.
	cfg := config.MustLoad()

	if flag.NArg() == 0 {
		return fmt.Errorf("usage: cargoctl [flags] orders | order <id> | rates | refresh | watch | convert <amount> <from>")
	}

	serverURL := cfg.Dashboard.BaseURL
	if *baseURL != "" {
		serverURL = *baseURL
	}

	every := cfg.Dashboard.RatesRefreshInterval
	if *interval > 0 {
		every = *interval
	}

	client := api.New(serverURL, api.WithTimeout(cfg.Dashboard.Timeout))

	d, err := dashboard.New(client, state.NewStore(), logger.NewNop())
	if err != nil {
		return err
	}

	ctx := context.Background()

	switch cmd := flag.Arg(0); cmd {
	case "orders":
		return listOrders(ctx, d, *search, *status, *sortBy, *query)
	case "order":
		if flag.NArg() < 2 {
			return fmt.Errorf("usage: cargoctl order <id>")
		}
		return showOrder(ctx, d, flag.Arg(1))
	case "rates":
		return showRates(ctx, d, false)
	case "refresh":
		return showRates(ctx, d, true)
	case "watch":
		return watchRates(ctx, d, every)
	case "convert":
		if flag.NArg() < 3 {
			return fmt.Errorf("usage: cargoctl convert <amount> <from>")
		}
		return convert(ctx, d, flag.Arg(1), flag.Arg(2))
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func listOrders(ctx context.Context, d *dashboard.Dashboard, search, status, sortBy, query string) error {
	d.FetchOrders(ctx)

	snapshot := d.Store().State().Orders
	if snapshot.List.Err != "" {
		return fmt.Errorf("load orders: %s", snapshot.List.Err)
	}

	filter := view.Filter{
		Search: search,
		Status: order.Status(status),
		Sort:   view.Sort(sortBy),
	}
	if status == "" {
		filter.Status = view.StatusAny
	}
	// The route query string overrides any manually chosen status filter.
	if query != "" {
		filter.Status = view.StatusFromQuery(query)
	}

	summary := view.Summarize(snapshot.Orders)
	fmt.Printf("orders: %d total, %d in progress, %d at customs, total %s\n\n",
		summary.Total,
		summary.ByStatus[order.INPROGRESS],
		summary.ByStatus[order.ATCUSTOMS],
		view.FormatCurrency(summary.TotalCNY, "CNY", view.FormatOptions{ShowFull: true}),
	)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tCLIENT\tTOTAL\tCREATED")
	for _, o := range view.Apply(snapshot.Orders, filter) {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			o.ID, o.Name, o.Status, o.ClientName,
			view.FormatCurrency(o.TotalCNY, "CNY", view.FormatOptions{}),
			o.CreatedDate.Format("2006-01-02"),
		)
	}
	return w.Flush()
}

func showOrder(ctx context.Context, d *dashboard.Dashboard, id string) error {
	d.FetchOrder(ctx, id)

	snapshot := d.Store().State().Orders
	if snapshot.Detail.Err != "" {
		return fmt.Errorf("load order: %s", snapshot.Detail.Err)
	}

	o := snapshot.Current
	if o == nil {
		return fmt.Errorf("order %s not loaded", id)
	}

	fmt.Printf("order #%d %s\n", o.ID, o.Name)
	fmt.Printf("  status:   %s\n", o.Status)
	fmt.Printf("  client:   %s\n", o.ClientName)
	fmt.Printf("  supplier: %s\n", o.SupplierName)
	fmt.Printf("  total:    %s / %s / %s\n",
		view.FormatCurrency(o.TotalCNY, "CNY", view.FormatOptions{}),
		view.FormatCurrency(o.TotalRUB, "RUB", view.FormatOptions{}),
		view.FormatCurrency(o.TotalUSD, "USD", view.FormatOptions{}),
	)
	fmt.Printf("  created:  %s\n", o.CreatedDate.Format("2006-01-02 15:04"))
	return nil
}

func showRates(ctx context.Context, d *dashboard.Dashboard, refresh bool) error {
	var err error
	if refresh {
		err = d.RefreshRates(ctx)
	} else {
		err = d.LoadRates(ctx)
	}
	if err != nil {
		return fmt.Errorf("load rates: %w", err)
	}

	snapshot := d.Store().State().Currency
	fmt.Printf("rates (base CNY), updated %s\n", snapshot.LastUpdate)
	for code, rate := range snapshot.Rates {
		fmt.Printf("  1 CNY = %s %s\n", rate.String(), code)
	}
	return nil
}

// watchRates keeps the rate snapshot current until interrupted, printing
// every change delivered through the store.
func watchRates(ctx context.Context, d *dashboard.Dashboard, interval time.Duration) error {
	if err := d.LoadRates(ctx); err != nil {
		return fmt.Errorf("load rates: %w", err)
	}

	unsubscribe := d.Store().Subscribe(func(s state.State) {
		if s.Currency.Status == state.UpdateSucceeded {
			fmt.Printf("rates updated at %s\n", s.Currency.LastUpdate)
		}
	})
	defer unsubscribe()

	refresher := refresh.New(d, interval, logger.NewNop())
	refresher.Run()
	defer refresher.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	return nil
}

func convert(ctx context.Context, d *dashboard.Dashboard, rawAmount, from string) error {
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return fmt.Errorf("invalid amount %q", rawAmount)
	}

	converted, err := d.ConvertedAmounts(ctx, amount, from)
	if err != nil {
		return err
	}

	for code, value := range converted {
		fmt.Printf("%s\n", view.FormatCurrency(value, code, view.FormatOptions{ShowFull: true}))
	}
	return nil
}
