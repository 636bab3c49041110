package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/johndauphine/sqldialect/internal/config"
	"github.com/johndauphine/sqldialect/internal/dialect"
	"github.com/johndauphine/sqldialect/internal/exitcodes"
	"github.com/johndauphine/sqldialect/internal/logging"
	"github.com/johndauphine/sqldialect/internal/probe"
	"github.com/johndauphine/sqldialect/internal/progress"
	"github.com/johndauphine/sqldialect/internal/registry"
	"github.com/johndauphine/sqldialect/internal/snapshot"
	"github.com/johndauphine/sqldialect/internal/sqlfrag"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "sqldialect",
		Usage:   "Pick the SQL dialect for a database and generate portable statements",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "Path to configuration file (detect and inspect only)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Value: "text",
				Usage: "Log format: text or json",
			},
			&cli.StringFlag{
				Name:  "verbosity",
				Value: "info",
				Usage: "Log verbosity level (debug, info, warn, error)",
			},
		},
		Before: func(c *cli.Context) error {
			level, err := logging.ParseLevel(c.String("verbosity"))
			if err != nil {
				return exitcodes.NewExitError(err, exitcodes.ConfigError)
			}
			logging.SetLevel(level)
			if err := logging.SetFormat(c.String("log-format")); err != nil {
				return exitcodes.NewExitError(err, exitcodes.ConfigError)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "products",
				Usage:  "List the database products and dialects that can be resolved",
				Action: listProducts,
			},
			{
				Name:      "resolve",
				Usage:     "Pick the dialect for a product name and version",
				ArgsUsage: "PRODUCT VERSION",
				Action:    resolveDialect,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "driver-version",
						Usage: "Driver version, used by products identified by their driver",
					},
					&cli.BoolFlag{
						Name:  "warn",
						Value: true,
						Usage: "Warn when the version is newer than any tested release",
					},
				},
			},
			{
				Name:   "limit",
				Usage:  "Render a row-limited select for a dialect",
				Action: renderLimit,
				Flags: append(statementFlags(),
					&cli.StringFlag{Name: "from", Usage: "FROM clause, including the keyword"},
					&cli.StringFlag{Name: "where", Usage: "WHERE clause, including the keyword"},
					&cli.StringFlag{Name: "group-by", Usage: "GROUP BY clause, including the keyword"},
					&cli.StringFlag{Name: "order", Usage: "ORDER BY clause, including the keyword"},
					&cli.IntFlag{Name: "rows", Usage: "Maximum rows to return, 0 for all"},
					&cli.Int64Flag{Name: "offset", Usage: "Rows to skip"},
				),
			},
			{
				Name:   "concat",
				Usage:  "Wrap a single-column select so it returns one comma separated value",
				Action: renderConcat,
				Flags:  statementFlags(),
			},
			{
				Name:      "reserved",
				Usage:     "List a dialect's reserved words, or show how names would be selected",
				ArgsUsage: "[NAME...]",
				Action:    showReserved,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "dialect",
						Aliases:  []string{"d"},
						Required: true,
						Usage:    "Dialect name, see 'products'",
					},
				},
			},
			{
				Name:   "detect",
				Usage:  "Connect to the configured database and report its dialect",
				Action: detectDialect,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output as JSON",
					},
				},
			},
			{
				Name:      "inspect",
				Usage:     "Read table metadata through the detected dialect",
				ArgsUsage: "[TABLE...]",
				Action:    inspectSchema,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "schema",
						Usage: "Schema to inspect (default: connection.schema, then the dialect default)",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Inspect every table in the schema",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Save the report as a YAML snapshot",
					},
					&cli.StringFlag{
						Name:  "compare",
						Usage: "Compare against a saved snapshot and list changed tables",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the report as JSON (progress goes to stderr as JSON lines)",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		msg, code := describeError(err)
		fmt.Fprint(os.Stderr, msg)
		os.Exit(code)
	}
}

// describeError renders err for stderr and picks the process exit code.
func describeError(err error) (string, int) {
	code := exitcodes.FromError(err)
	msg := fmt.Sprintf("Error: %v\n", err)
	if exitcodes.IsRecoverable(code) {
		msg += fmt.Sprintf("Exit code %d: %s, safe to retry\n", code, exitcodes.Description(code))
	}
	return msg, code
}

func statementFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "dialect",
			Aliases:  []string{"d"},
			Required: true,
			Usage:    "Dialect name, see 'products'",
		},
		&cli.StringFlag{
			Name:     "select",
			Required: true,
			Usage:    "SELECT clause, including the keyword",
		},
	}
}

func listProducts(c *cli.Context) error {
	m := registry.New()
	out := newPrinter()

	out.heading("Products")
	for _, name := range m.ProductNames() {
		out.item(name)
	}
	out.heading("Dialects")
	for _, d := range m.Dialects() {
		out.row(d.Name(), d.ProductName())
	}
	return nil
}

func resolveDialect(c *cli.Context) error {
	if c.NArg() != 2 {
		return exitcodes.NewExitError(fmt.Errorf("expected PRODUCT VERSION, got %d arguments", c.NArg()), exitcodes.ConfigError)
	}
	d, err := registry.New().ResolveString(c.Args().Get(0), c.Args().Get(1), c.String("driver-version"), c.Bool("warn"))
	if err != nil {
		return err
	}
	printDialect(newPrinter(), d)
	return nil
}

func lookupDialect(c *cli.Context) (*dialect.Dialect, error) {
	name := c.String("dialect")
	d, ok := registry.New().Lookup(name)
	if !ok {
		return nil, exitcodes.NewExitError(fmt.Errorf("unknown dialect %q, see 'sqldialect products'", name), exitcodes.ConfigError)
	}
	return d, nil
}

func optionalFragment(s string) *sqlfrag.Fragment {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return sqlfrag.New(s)
}

func renderLimit(c *cli.Context) error {
	d, err := lookupDialect(c)
	if err != nil {
		return err
	}
	frag, err := d.LimitRows(dialect.LimitRequest{
		Select:   sqlfrag.New(c.String("select")),
		From:     optionalFragment(c.String("from")),
		Filter:   optionalFragment(c.String("where")),
		GroupBy:  c.String("group-by"),
		Order:    c.String("order"),
		RowCount: c.Int("rows"),
		Offset:   c.Int64("offset"),
	})
	if err != nil {
		return err
	}
	newPrinter().sql(frag)
	return nil
}

func renderConcat(c *cli.Context) error {
	d, err := lookupDialect(c)
	if err != nil {
		return err
	}
	frag, err := d.SelectConcat(sqlfrag.New(c.String("select")))
	if err != nil {
		return err
	}
	newPrinter().sql(frag)
	return nil
}

func showReserved(c *cli.Context) error {
	d, err := lookupDialect(c)
	if err != nil {
		return err
	}
	out := newPrinter()
	if c.NArg() == 0 {
		for _, w := range d.ReservedWords() {
			out.item(w)
		}
		return nil
	}
	for _, name := range c.Args().Slice() {
		note := ""
		if d.IsReserved(name) {
			note = "reserved"
		}
		out.row(name, d.ColumnSelectName(name), note)
	}
	return nil
}

// withSignals cancels the returned context on SIGINT or SIGTERM.
func withSignals() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nInterrupted.")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	configPath := c.String("config")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, exitcodes.NewExitError(fmt.Errorf("configuration file not found: %s", configPath), exitcodes.ConfigError)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, exitcodes.NewExitError(fmt.Errorf("failed to load config: %w", err), exitcodes.ConfigError)
	}
	if logging.IsDebug() {
		safe := cfg.Sanitized().Connection
		logging.Debug("Loaded %s: type=%s host=%s port=%d database=%s user=%s password=%s schema=%s",
			configPath, safe.Type, safe.Host, safe.Port, safe.Database, safe.User, safe.Password, safe.Schema)
	}

	// Config file logging settings apply unless overridden on the command line
	if !c.IsSet("verbosity") {
		if level, err := logging.ParseLevel(cfg.Logging.Verbosity); err == nil {
			logging.SetLevel(level)
		}
	}
	if !c.IsSet("log-format") {
		if err := logging.SetFormat(cfg.Logging.Format); err != nil {
			return nil, exitcodes.NewExitError(err, exitcodes.ConfigError)
		}
	}
	return cfg, nil
}

func connect(c *cli.Context) (*probe.Conn, context.Context, context.CancelFunc, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := withSignals()
	conn, err := probe.Open(ctx, cfg)
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	return conn, ctx, cancel, nil
}

func detectDialect(c *cli.Context) error {
	conn, ctx, cancel, err := connect(c)
	if err != nil {
		return err
	}
	defer cancel()
	defer conn.Close()

	d, id, err := conn.Resolve(ctx, registry.New())
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(struct {
			probe.Identity
			Dialect string `json:"dialect"`
		}{id, d.Name()})
	}

	out := newPrinter()
	out.heading("Server")
	out.row("product", id.ProductName)
	out.row("version", id.ProductVersion)
	out.row("driver", strings.TrimSpace(id.DriverName+" "+id.DriverVersion))
	printDialect(out, d)
	return nil
}

func inspectSchema(c *cli.Context) error {
	tables := c.Args().Slice()
	if len(tables) == 0 && !c.Bool("all") {
		return exitcodes.NewExitError(fmt.Errorf("name at least one table or pass --all"), exitcodes.ConfigError)
	}
	if len(tables) > 0 && c.Bool("all") {
		return exitcodes.NewExitError(fmt.Errorf("--all cannot be combined with table names"), exitcodes.ConfigError)
	}

	conn, ctx, cancel, err := connect(c)
	if err != nil {
		return err
	}
	defer cancel()
	defer conn.Close()

	var (
		onProgress probe.ProgressFunc
		finish     = func() {}
	)
	switch {
	case c.Bool("json"):
		r := progress.NewJSONReporter(os.Stderr, 0)
		onProgress = progress.Func(r, "inspect")
		finish = r.Close
	case isTerminal(os.Stderr):
		tr := progress.New(os.Stderr)
		onProgress = tr.Update
		finish = tr.Finish
	}

	report, err := conn.Inspect(ctx, registry.New(), c.String("schema"), tables, onProgress)
	finish()
	if err != nil {
		return err
	}

	if path := c.String("out"); path != "" {
		if err := snapshot.Save(path, report); err != nil {
			return exitcodes.NewExitError(err, exitcodes.IOError)
		}
		logging.Info("Saved snapshot %s to %s", report.ID, path)
	}

	var changes []snapshot.Change
	if path := c.String("compare"); path != "" {
		prev, err := snapshot.Load(path)
		if err != nil {
			return exitcodes.NewExitError(err, exitcodes.IOError)
		}
		changes = compareSnapshot(prev, report)
	}

	if c.Bool("json") {
		if c.IsSet("compare") {
			return printJSON(struct {
				*probe.Report
				Changes []snapshot.Change `json:"changes"`
			}{report, changes})
		}
		return printJSON(report)
	}

	out := newPrinter()
	for _, t := range report.Tables {
		printTable(out, t)
	}
	if c.IsSet("compare") {
		printChanges(out, changes)
	}
	return nil
}

// compareSnapshot lists changes since prev. Matching table hashes skip the diff.
func compareSnapshot(prev *snapshot.Snapshot, report *probe.Report) []snapshot.Change {
	if prev.Hash != "" && prev.Hash == snapshot.Hash(report.Tables) {
		logging.Debug("Snapshot hash %s unchanged", prev.Hash)
		return nil
	}
	return snapshot.Diff(prev.Report.Tables, report.Tables)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
