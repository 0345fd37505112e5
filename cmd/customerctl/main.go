// Command customerctl calls a customer-management GraphQL service.
//
//	customerctl [-config file] list [-name n] [-phone p] [-created YYYY-MM-DD]
//	customerctl create -name n -phone p -address a
//	customerctl update -id id -name n -phone p -address a
//	customerctl patch -id id [-name n] [-phone p] [-address a]
//	customerctl delete -id id
//	customerctl serve-fake [-addr :8081]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"net/http"
	"os"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"

	"github.com/polovyi/graphql"
	"github.com/polovyi/graphql/customer"
	"github.com/polovyi/graphql/internal/config"
	"github.com/polovyi/graphql/internal/fakeserver"
)

func main() {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	if err := run(os.Args[1:], os.Stdout, logger); err != nil {
		level.Error(logger).Log("err", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer, logger log.Logger) error {
	fs := flag.NewFlagSet("customerctl", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}
	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]

	if cmd == "serve-fake" {
		return serveFake(cmdArgs, logger)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger = level.NewFilter(logger, allowLevel(cfg.LogLevel))

	client := customer.NewClient(newTransport(cfg, logger), customer.WithLogger(logger))
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	switch cmd {
	case "list":
		return list(ctx, client, cmdArgs, stdout)
	case "create":
		return create(ctx, client, cmdArgs, stdout)
	case "update":
		return update(ctx, client, cmdArgs)
	case "patch":
		return patch(ctx, client, cmdArgs)
	case "delete":
		return remove(ctx, client, cmdArgs)
	default:
		return errors.Errorf("unknown command %q", cmd)
	}
}

func newTransport(cfg config.Config, logger log.Logger) *graphql.Client {
	opts := []graphql.ClientOption{
		graphql.WithRetryConfig(graphql.RetryConfig{
			Policy:      graphql.PolicyType(cfg.Retry.Policy),
			MaxTries:    cfg.Retry.MaxTries,
			Interval:    cfg.Retry.Interval,
			MaxInterval: cfg.Retry.MaxInterval,
		}),
	}
	if cfg.Token != "" {
		opts = append(opts, graphql.WithHeader("Authorization", "Bearer "+cfg.Token))
	}
	for k, v := range cfg.Headers {
		opts = append(opts, graphql.WithHeader(k, v))
	}
	if cfg.Gzip {
		opts = append(opts, graphql.UseGzip())
	}
	if cfg.CloseRequestBody {
		opts = append(opts, graphql.ImmediatelyCloseReqBody())
	}

	client := graphql.NewClient(cfg.Endpoint, opts...)
	debug := level.Debug(log.With(logger, "component", "transport"))
	client.Log = func(s string) {
		debug.Log("msg", s)
	}
	return client
}

func allowLevel(name string) level.Option {
	switch name {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}

func list(ctx context.Context, client *customer.Client, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	name := fs.String("name", "", "full name filter")
	phone := fs.String("phone", "", "phone number filter")
	created := fs.String("created", "", "creation date filter, YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var f customer.Filter
	filtered := false
	fs.Visit(func(fl *flag.Flag) {
		filtered = true
		switch fl.Name {
		case "name":
			f.FullName = name
		case "phone":
			f.PhoneNumber = phone
		}
	})
	if *created != "" {
		d, err := customer.ParseDate(*created)
		if err != nil {
			return err
		}
		f.CreatedAt = &d
	}

	var (
		customers []customer.Customer
		err       error
	)
	if filtered {
		customers, err = client.ListCustomersWithFilters(ctx, f)
	} else {
		customers, err = client.ListAllCustomers(ctx)
	}
	if err != nil {
		return err
	}
	return printJSON(stdout, customers)
}

func create(ctx context.Context, client *customer.Client, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	var r customer.CreateCustomerRequest
	fs.StringVar(&r.FullName, "name", "", "full name")
	fs.StringVar(&r.PhoneNumber, "phone", "", "phone number")
	fs.StringVar(&r.Address, "address", "", "address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := client.CreateCustomer(ctx, r)
	if err != nil {
		return err
	}
	return printJSON(stdout, map[string]string{"id": id})
}

func update(ctx context.Context, client *customer.Client, args []string) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	id := fs.String("id", "", "customer id")
	var r customer.UpdateCustomerRequest
	fs.StringVar(&r.FullName, "name", "", "full name")
	fs.StringVar(&r.PhoneNumber, "phone", "", "phone number")
	fs.StringVar(&r.Address, "address", "", "address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return client.UpdateCustomer(ctx, *id, r)
}

func patch(ctx context.Context, client *customer.Client, args []string) error {
	fs := flag.NewFlagSet("patch", flag.ContinueOnError)
	id := fs.String("id", "", "customer id")
	name := fs.String("name", "", "full name")
	phone := fs.String("phone", "", "phone number")
	address := fs.String("address", "", "address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// only flags given on the command line are sent
	var r customer.PartiallyUpdateCustomerRequest
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "name":
			r.FullName = name
		case "phone":
			r.PhoneNumber = phone
		case "address":
			r.Address = address
		}
	})
	return client.PartiallyUpdateCustomer(ctx, *id, r)
}

func remove(ctx context.Context, client *customer.Client, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	id := fs.String("id", "", "customer id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return client.DeleteCustomer(ctx, *id)
}

func serveFake(args []string, logger log.Logger) error {
	fs := flag.NewFlagSet("serve-fake", flag.ContinueOnError)
	addr := fs.String("addr", ":8081", "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	srv, err := fakeserver.New(fakeserver.WithLogger(log.With(logger, "component", "fakeserver")))
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/graphql", srv)

	level.Info(logger).Log("msg", "serving fake customer service", "addr", *addr, "path", "/graphql")
	return http.ListenAndServe(*addr, mux)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "write output")
	}
	return nil
}
