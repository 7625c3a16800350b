package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/maldonadorepuestos/storefront/pkg/imageurl"
	"github.com/maldonadorepuestos/storefront/pkg/logger"
	"github.com/maldonadorepuestos/storefront/pkg/money"
	"github.com/maldonadorepuestos/storefront/pkg/storefront/cart"
	"github.com/maldonadorepuestos/storefront/pkg/storefront/gateway"
	"github.com/maldonadorepuestos/storefront/pkg/storefront/quote"
	"github.com/maldonadorepuestos/storefront/pkg/storefront/search"
)

const onRequestLabel = "Consultar"

const usage = `usage: quotecart <command> [flags] [args]

commands:
  search <query>             search the catalog and record the query
  add <code|id> [quantity]   add a product to the local cart
  list                       show the cart
  set <entry-id> <quantity>  change a line quantity
  remove <entry-id>          remove a line
  clear                      empty the cart
  quote -name -email -phone  submit the cart as a WhatsApp quote
  recent [-clear]            show or clear recent searches
`

var errUsage = errors.New("invalid usage")

// catalog is the part of the gateway the CLI reads products from.
type catalog interface {
	search.Searcher
	Product(ctx context.Context, id int64) (*gateway.Product, error)
	ProductByCode(ctx context.Context, code string) (*gateway.Product, error)
}

type app struct {
	catalog  catalog
	cart     *cart.LocalStore
	recent   *search.RecentSearches
	composer *quote.Composer
	delay    time.Duration
	debounce time.Duration
	out      io.Writer
	errOut   io.Writer
	logg     *logger.Logger
}

// run dispatches args and returns the process exit code.
func (a *app) run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(a.errOut, usage)
		return 2
	}

	var err error
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "search":
		err = a.search(ctx, rest)
	case "add":
		err = a.add(ctx, rest)
	case "list":
		err = a.list()
	case "set":
		err = a.set(ctx, rest)
	case "remove":
		err = a.remove(ctx, rest)
	case "clear":
		err = a.cart.Clear(ctx)
		if err == nil {
			fmt.Fprintln(a.out, "Carrito vacío")
		}
	case "quote":
		err = a.quote(ctx, rest)
	case "recent":
		err = a.recentSearches(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return 0
	default:
		fmt.Fprintf(a.errOut, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		return 2
	default:
		fmt.Fprintf(a.errOut, "%s: %v\n", cmd, err)
		return 1
	}
}

func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

func (a *app) usageErr(format string, args ...any) error {
	fmt.Fprintf(a.errOut, format+"\n", args...)
	return errUsage
}

func (a *app) search(ctx context.Context, args []string) error {
	fs := a.newFlagSet("search")
	limit := fs.Int("limit", search.DefaultLimit, "maximum number of results")
	timeout := fs.Duration("timeout", 15*time.Second, "how long to wait for results")
	if err := fs.Parse(args); err != nil {
		return err
	}
	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		return a.usageErr("usage: quotecart search <query>")
	}

	coord := search.NewCoordinator(a.catalog, a.recent, search.Options{
		Debounce: a.debounce,
		Limit:    *limit,
		Logger:   a.logg,
	})
	defer coord.Close()

	coord.SetQuery(query)
	coord.Flush()

	waitCtx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	view, err := coord.Await(waitCtx)
	if err != nil {
		return err
	}
	if view.Err != nil {
		return view.Err
	}

	switch view.Phase {
	case search.PhaseIdle:
		return a.usageErr("la búsqueda necesita al menos %d caracteres", search.DefaultMinLength)
	case search.PhaseEmpty:
		fmt.Fprintf(a.out, "Sin resultados para %q\n", query)
	default:
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCÓDIGO\tPRODUCTO\tMARCA\tPRECIO\tIMAGEN")
		for _, p := range view.Results {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
				p.ID, p.Code, p.Name, p.Brand,
				money.FormatOr(p.Price, onRequestLabel),
				thumb(p.ImageURL, imageurl.SearchThumb))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	coord.Enter(ctx)
	return nil
}

func (a *app) add(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return a.usageErr("usage: quotecart add <code|id> [quantity]")
	}
	quantity := 1
	if len(args) == 2 {
		q, err := strconv.Atoi(args[1])
		if err != nil || q < 1 {
			return a.usageErr("quantity must be a positive integer")
		}
		quantity = q
	}

	product, err := a.lookup(ctx, args[0])
	if err != nil {
		return err
	}
	if err := a.cart.AddItem(ctx, cart.SnapshotFromProduct(*product), quantity); err != nil {
		return err
	}
	entry, _ := a.cart.Item(product.ID)
	fmt.Fprintf(a.out, "Agregado: %s (%s) x%d\n", product.Name, product.Code, entry.Quantity)
	return nil
}

// lookup resolves a product code first and falls back to a numeric id.
func (a *app) lookup(ctx context.Context, ref string) (*gateway.Product, error) {
	product, err := a.catalog.ProductByCode(ctx, ref)
	if err == nil {
		return product, nil
	}
	if !gateway.IsNotFound(err) {
		return nil, err
	}
	id, convErr := strconv.ParseInt(ref, 10, 64)
	if convErr != nil || id <= 0 {
		return nil, fmt.Errorf("producto %q no encontrado", ref)
	}
	product, err = a.catalog.Product(ctx, id)
	if gateway.IsNotFound(err) {
		return nil, fmt.Errorf("producto %q no encontrado", ref)
	}
	return product, err
}

func (a *app) list() error {
	entries := a.cart.Items()
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "El carrito está vacío")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ENTRADA\tCÓDIGO\tPRODUCTO\tCANT.\tUNITARIO\tTOTAL")
	for _, e := range entries {
		line := onRequestLabel
		if !e.Product.Price.IsOnRequest() {
			line = money.FormatOr(money.Priced(e.LineTotal()), onRequestLabel)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			e.ID, e.Product.Code, e.Product.Name, e.Quantity,
			money.FormatOr(e.Product.Price, onRequestLabel), line)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	subtotal, onRequest := a.cart.Subtotal()
	fmt.Fprintf(a.out, "Artículos: %d\n", a.cart.ItemsCount())
	fmt.Fprintf(a.out, "Subtotal: %s\n", money.FormatOr(money.Priced(subtotal), onRequestLabel))
	if onRequest {
		fmt.Fprintln(a.out, "Hay productos con precio a consultar")
	}
	return nil
}

func (a *app) set(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return a.usageErr("usage: quotecart set <entry-id> <quantity>")
	}
	q, err := strconv.Atoi(args[1])
	if err != nil {
		return a.usageErr("quantity must be an integer")
	}
	return a.cart.UpdateQuantity(ctx, args[0], q)
}

func (a *app) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usageErr("usage: quotecart remove <entry-id>")
	}
	return a.cart.RemoveItem(ctx, args[0])
}

func (a *app) quote(ctx context.Context, args []string) error {
	fs := a.newFlagSet("quote")
	var contact quote.Contact
	fs.StringVar(&contact.Name, "name", "", "contact name")
	fs.StringVar(&contact.Email, "email", "", "contact email")
	fs.StringVar(&contact.Phone, "phone", "", "contact phone")
	fs.StringVar(&contact.VehicleInfo, "vehicle", "", "vehicle make, model and year")
	fs.StringVar(&contact.Message, "message", "", "additional message")
	if err := fs.Parse(args); err != nil {
		return err
	}

	checkout := quote.NewCheckout(a.cart, a.composer, a.delay)
	checkout.OnSubmitted = func(res *quote.Result) {
		if res.Quote != nil {
			fmt.Fprintf(a.out, "Cotización #%d registrada\n", res.Quote.ID)
		}
	}
	if _, err := checkout.Run(ctx, contact); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Carrito vaciado")
	return nil
}

func (a *app) recentSearches(ctx context.Context, args []string) error {
	fs := a.newFlagSet("recent")
	clearAll := fs.Bool("clear", false, "forget every recent search")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *clearAll {
		a.recent.Clear(ctx)
		return nil
	}
	for _, q := range a.recent.List() {
		fmt.Fprintln(a.out, q)
	}
	return nil
}

func thumb(url *string, preset imageurl.Preset) string {
	if url == nil || *url == "" {
		return "-"
	}
	return imageurl.ForPreset(*url, preset)
}
