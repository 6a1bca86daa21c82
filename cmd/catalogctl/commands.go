package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/subcommands"

	"github.com/jmanzanog/instrument-catalog/internal/client"
	"github.com/jmanzanog/instrument-catalog/internal/domain"
)

// env is what every command shares: where to write and how to reach the
// catalog.
type env struct {
	out       io.Writer
	errOut    io.Writer
	newMirror func() *client.Mirror
}

func newEnv(out, errOut io.Writer, newMirror func() *client.Mirror) *env {
	return &env{out: out, errOut: errOut, newMirror: newMirror}
}

// Register adds the catalog commands to the commander.
func Register(c *subcommands.Commander, e *env) {
	c.Register(&listCmd{env: e}, "catalog")
	c.Register(&getCmd{env: e}, "catalog")
	c.Register(&addCmd{env: e}, "catalog")
	c.Register(&updateCmd{env: e}, "catalog")
	c.Register(&deleteCmd{env: e}, "catalog")

	c.Register(&seedCmd{env: e}, "bulk")
	c.Register(&clearCmd{env: e}, "bulk")

	c.Register(&watchCmd{env: e}, "")
}

// activate returns a mirror loaded from the service, or reports why not.
func (e *env) activate(ctx context.Context) (*client.Mirror, bool) {
	m := e.newMirror()
	if err := m.Activate(ctx); err != nil {
		e.fail(err)
		return nil, false
	}
	return m, true
}

func (e *env) fail(err error) {
	if errors.Is(err, client.ErrUnauthenticated) {
		fmt.Fprintln(e.errOut, "Error: not signed in, pass -session or set CATALOG_SESSION")
		return
	}
	fmt.Fprintf(e.errOut, "Error: %v\n", err)
}

func parseType(value string) (domain.InstrumentType, error) {
	t := domain.InstrumentType(strings.ToUpper(strings.TrimSpace(value)))
	if !t.IsValid() {
		return "", fmt.Errorf("unknown instrument type %q (want TICKER, ISIN or CUSIP)", value)
	}
	return t, nil
}

// formFlags are the editable fields shared by add and update.
type formFlags struct {
	typ         string
	code        string
	name        string
	description string
}

func (f *formFlags) set(fs *flag.FlagSet) {
	fs.StringVar(&f.typ, "type", "", "Identifier type: TICKER, ISIN or CUSIP")
	fs.StringVar(&f.code, "code", "", "Identifier code")
	fs.StringVar(&f.name, "name", "", "Display name")
	fs.StringVar(&f.description, "description", "", "Optional description")
}

// --- list ---

type listCmd struct {
	*env
	typ string
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list the instruments in the catalog" }
func (*listCmd) Usage() string {
	return `list [-type TICKER|ISIN|CUSIP]

  Prints every instrument, optionally only those of one type.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.typ, "type", "", "Only list instruments of this type")
}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var filter domain.InstrumentType
	if c.typ != "" {
		t, err := parseType(c.typ)
		if err != nil {
			fmt.Fprintln(c.errOut, "Error:", err)
			return subcommands.ExitUsageError
		}
		filter = t
	}

	m, ok := c.activate(ctx)
	if !ok {
		return subcommands.ExitFailure
	}

	records := m.Instruments()
	if filter != "" {
		records = m.InstrumentsByType(filter)
	}
	printTable(c.out, records)
	return subcommands.ExitSuccess
}

// --- get ---

type getCmd struct{ *env }

func (*getCmd) Name() string           { return "get" }
func (*getCmd) Synopsis() string       { return "show one instrument" }
func (*getCmd) Usage() string          { return "get <id>\n" }
func (*getCmd) SetFlags(*flag.FlagSet) {}

func (c *getCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(c.errOut, "Error: get takes exactly one instrument id")
		return subcommands.ExitUsageError
	}

	inst, err := c.newMirror().FetchInstrument(ctx, f.Arg(0))
	if err != nil {
		c.fail(err)
		return subcommands.ExitFailure
	}
	printDetail(c.out, *inst)
	return subcommands.ExitSuccess
}

// --- add ---

type addCmd struct {
	*env
	form formFlags
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add an instrument to the catalog" }
func (*addCmd) Usage() string {
	return `add -type <type> -code <code> -name <name> [-description <text>]

  Creates a new instrument. The code is stored uppercase and must be unique
  for its type.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) { c.form.set(f) }

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	m, ok := c.activate(ctx)
	if !ok {
		return subcommands.ExitFailure
	}

	created, err := m.AddInstrument(ctx, domain.InstrumentForm{
		Type:        domain.InstrumentType(strings.ToUpper(c.form.typ)),
		Code:        c.form.code,
		Name:        c.form.name,
		Description: c.form.description,
	})
	if err != nil {
		c.fail(err)
		return subcommands.ExitFailure
	}

	fmt.Fprintf(c.out, "Added %s %s (%s)\n", created.Type, created.Code, created.ID)
	return subcommands.ExitSuccess
}

// --- update ---

type updateCmd struct {
	*env
	form formFlags
}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "change an existing instrument" }
func (*updateCmd) Usage() string {
	return `update <id> [-type <type>] [-code <code>] [-name <name>] [-description <text>]

  Fields left out keep their current value.
`
}

func (c *updateCmd) SetFlags(f *flag.FlagSet) { c.form.set(f) }

func (c *updateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		fmt.Fprintln(c.errOut, "Error: update takes exactly one instrument id")
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)

	// flag stops at the id, so the field flags after it need a second pass.
	if err := f.Parse(f.Args()[1:]); err != nil {
		fmt.Fprintf(c.errOut, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if f.NArg() != 0 {
		fmt.Fprintln(c.errOut, "Error: update takes exactly one instrument id")
		return subcommands.ExitUsageError
	}

	m := c.newMirror()
	current, err := m.FetchInstrument(ctx, id)
	if err != nil {
		c.fail(err)
		return subcommands.ExitFailure
	}

	form := current.Form()
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "type":
			form.Type = domain.InstrumentType(strings.ToUpper(c.form.typ))
		case "code":
			form.Code = c.form.code
		case "name":
			form.Name = c.form.name
		case "description":
			form.Description = c.form.description
		}
	})

	updated, err := m.UpdateInstrument(ctx, id, form)
	if err != nil {
		c.fail(err)
		return subcommands.ExitFailure
	}

	fmt.Fprintf(c.out, "Updated %s %s (%s)\n", updated.Type, updated.Code, updated.ID)
	return subcommands.ExitSuccess
}

// --- delete ---

type deleteCmd struct{ *env }

func (*deleteCmd) Name() string           { return "delete" }
func (*deleteCmd) Synopsis() string       { return "remove an instrument" }
func (*deleteCmd) Usage() string          { return "delete <id>\n" }
func (*deleteCmd) SetFlags(*flag.FlagSet) {}

func (c *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(c.errOut, "Error: delete takes exactly one instrument id")
		return subcommands.ExitUsageError
	}

	m, ok := c.activate(ctx)
	if !ok {
		return subcommands.ExitFailure
	}

	if err := m.DeleteInstrument(ctx, f.Arg(0)); err != nil {
		c.fail(err)
		return subcommands.ExitFailure
	}

	fmt.Fprintf(c.out, "Deleted %s, %d instruments left\n", f.Arg(0), len(m.Instruments()))
	return subcommands.ExitSuccess
}

// --- seed ---

type seedCmd struct{ *env }

func (*seedCmd) Name() string           { return "seed" }
func (*seedCmd) Synopsis() string       { return "replace the catalog with the sample instruments" }
func (*seedCmd) Usage() string          { return "seed\n\n  Overwrites the whole catalog with six sample instruments.\n" }
func (*seedCmd) SetFlags(*flag.FlagSet) {}

func (c *seedCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	m := c.newMirror()
	if err := m.LoadSampleData(ctx, domain.SampleInstruments()); err != nil {
		c.fail(err)
		return subcommands.ExitFailure
	}

	printTable(c.out, m.Instruments())
	return subcommands.ExitSuccess
}

// --- clear ---

type clearCmd struct {
	*env
	yes bool
}

func (*clearCmd) Name() string     { return "clear" }
func (*clearCmd) Synopsis() string { return "remove every instrument" }
func (*clearCmd) Usage() string {
	return `clear -yes

  Empties the catalog. -yes is required.
`
}

func (c *clearCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "yes", false, "Confirm that the whole catalog should be removed")
}

func (c *clearCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.yes {
		fmt.Fprintln(c.errOut, "Error: refusing to clear the catalog without -yes")
		return subcommands.ExitUsageError
	}

	m := c.newMirror()
	if err := m.ClearAllInstruments(ctx); err != nil {
		c.fail(err)
		return subcommands.ExitFailure
	}

	fmt.Fprintln(c.out, "Catalog cleared")
	return subcommands.ExitSuccess
}

// --- watch ---

type watchCmd struct {
	*env
	interval time.Duration
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "print the catalog every time it is refreshed" }
func (*watchCmd) Usage() string {
	return `watch [-interval 10s]

  Re-fetches the catalog on an interval until interrupted.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.DurationVar(&c.interval, "interval", 10*time.Second, "Time between refreshes")
}

func (c *watchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.interval <= 0 {
		fmt.Fprintln(c.errOut, "Error: -interval must be positive")
		return subcommands.ExitUsageError
	}

	m, ok := c.activate(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	printTable(c.out, m.Instruments())

	refresher := client.NewRefresher(m, c.interval)
	refresher.OnRefresh(func(err error) {
		if err != nil {
			c.fail(err)
			return
		}
		fmt.Fprintf(c.out, "\n%s\n", time.Now().Format(time.TimeOnly))
		printTable(c.out, m.Instruments())
	})
	refresher.Start(ctx)

	return subcommands.ExitSuccess
}
