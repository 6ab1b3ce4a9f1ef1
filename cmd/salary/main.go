/*
main.go - Command-line tool for recording shifts and checking pay

PURPOSE:
  The single-user front end: record shifts as they are worked and ask what
  the current (or an earlier) period pays. Shares the server's settings, so
  both binaries can point at the same database and wage file.

COMMANDS:
  add <start> <end> [-break MIN]     Record a shift, the break comes off the end
  remove <id>                        Delete a shift
  edit-shift <id> [-start T] [-end T]
  list [-all] [-sort] [-offset N]    Shifts in the period (or all of them)
  calculate [-offset N]              Worked time and earnings for the period
  period [-offset N]                 Print the period bounds
  drop-database [-yes]               Delete every shift after confirmation
  init [-base-rate R] [-start-day D] Write a wage file if none exists

TIMESTAMPS:
  "03-03-2025 08:00", "2025-03-03 08:00", or "03-03 08:00" for the current
  year. Seconds are optional.

SEE ALSO:
  - payroll/time.go: Accepted timestamp layouts
  - config/config.go: Database and wage file settings
*/
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/warp/shift-payroll/api"
	"github.com/warp/shift-payroll/config"
	"github.com/warp/shift-payroll/factory"
	"github.com/warp/shift-payroll/payroll"
	"github.com/warp/shift-payroll/store/postgres"
	"github.com/warp/shift-payroll/store/sqlite"
)

const usage = `usage: salary [-config FILE] [-env FILE] <command> [flags]

commands:
  add <start> <end> [-break MIN]
  remove <id>
  edit-shift <id> [-start T] [-end T]
  list [-all] [-sort] [-offset N]
  calculate [-offset N]
  period [-offset N]
  drop-database [-yes]
  init [-base-rate R] [-start-day D]
`

func main() {
	global := flag.NewFlagSet("salary", flag.ExitOnError)
	configFile := global.String("config", "", "config file path")
	envFile := global.String("env", "", ".env file path")
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	global.Parse(os.Args[1:])

	if global.NArg() == 0 {
		global.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(config.Options{ConfigFile: *configFile, EnvFile: *envFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, global.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, args []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	// init must work before a wage file exists
	if args[0] == "init" {
		a := &app{out: os.Stdout, wageFile: cfg.WageFile}
		return a.initWage(args[1:])
	}

	wage, err := factory.Load(cfg.WageFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w (run \"salary init\" first)", err)
		}
		return err
	}

	store, closeStore, err := openStore(cfg.Database)
	if err != nil {
		return err
	}
	defer closeStore()

	a := &app{
		store:    store,
		calc:     payroll.NewCalculator(store, wage, logger),
		now:      time.Now,
		in:       os.Stdin,
		out:      os.Stdout,
		wageFile: cfg.WageFile,
	}
	return a.run(context.Background(), args)
}

func openStore(db config.DatabaseConfig) (api.Repository, func() error, error) {
	if db.Driver == config.DriverPostgres {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s, err := postgres.Connect(ctx, postgres.Options{URL: db.URL, MaxConns: db.MaxConns, MinConns: db.MinConns})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	s, err := sqlite.New(db.Path)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

// =============================================================================
// COMMANDS
// =============================================================================

type app struct {
	store    api.Repository
	calc     *payroll.Calculator
	now      func() time.Time
	in       io.Reader
	out      io.Writer
	wageFile string
}

func (a *app) run(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "add":
		return a.add(ctx, rest)
	case "remove":
		return a.remove(ctx, rest)
	case "edit-shift":
		return a.editShift(ctx, rest)
	case "list":
		return a.list(ctx, rest)
	case "calculate":
		return a.calculate(ctx, rest)
	case "period":
		return a.period(rest)
	case "drop-database":
		return a.dropDatabase(ctx, rest)
	case "init":
		return a.initWage(rest)
	}
	return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
}

func (a *app) today() time.Time { return payroll.Naive(a.now()) }

// parseFlags parses fs and returns the positional arguments. Flags may
// follow positionals, as in "add <start> <end> -break 30".
func parseFlags(fs *flag.FlagSet, args []string) ([]string, error) {
	fs.SetOutput(io.Discard)
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			return positional, nil
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	breakMinutes := fs.Int("break", 0, "break in whole minutes")
	pos, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 2 {
		return errors.New("add needs a start and an end")
	}

	start, err := payroll.ParseTimestamp(pos[0], a.today())
	if err != nil {
		return err
	}
	end, err := payroll.ParseTimestamp(pos[1], a.today())
	if err != nil {
		return err
	}
	shift, err := payroll.NewShift(start, end, time.Duration(*breakMinutes)*time.Minute)
	if err != nil {
		return err
	}
	shift, err = a.store.AddShift(ctx, shift)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Added shift %s that started at: %s and ended at: %s, break is: %d minutes\n",
		shift.ID, payroll.FormatTimestamp(start), payroll.FormatTimestamp(end), *breakMinutes)
	return nil
}

func (a *app) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("remove needs a shift id")
	}
	if err := a.store.RemoveShift(ctx, payroll.ShiftID(args[0])); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Successfully deleted shift with the id of: %s\n", args[0])
	return nil
}

func (a *app) editShift(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edit-shift", flag.ContinueOnError)
	startFlag := fs.String("start", "", "new start")
	endFlag := fs.String("end", "", "new end")
	pos, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return errors.New("edit-shift needs a shift id")
	}

	var start, end *time.Time
	if *startFlag != "" {
		t, err := payroll.ParseTimestamp(*startFlag, a.today())
		if err != nil {
			return err
		}
		start = &t
	}
	if *endFlag != "" {
		t, err := payroll.ParseTimestamp(*endFlag, a.today())
		if err != nil {
			return err
		}
		end = &t
	}

	shift, err := a.store.UpdateShift(ctx, payroll.ShiftID(pos[0]), start, end)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Edit successful!")
	fmt.Fprintln(a.out, "\nChanges:")
	if start != nil {
		fmt.Fprintf(a.out, "shift_start = %s\n", payroll.FormatTimestamp(shift.Start))
	}
	if end != nil {
		fmt.Fprintf(a.out, "shift_end = %s\n", payroll.FormatTimestamp(shift.End))
	}
	return nil
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	all := fs.Bool("all", false, "list every shift ever recorded")
	sortDesc := fs.Bool("sort", false, "most recent first")
	offset := fs.Int("offset", 0, "periods back from the current one")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}

	filter := payroll.ListFilter{NewestFirst: *sortDesc}
	if !*all {
		period, err := a.calc.Period(a.today(), *offset)
		if err != nil {
			return err
		}
		filter.Period = &period
	}

	shifts, err := a.store.ListShifts(ctx, filter)
	if err != nil {
		return err
	}
	for _, s := range shifts {
		fmt.Fprintf(a.out, "id: %s | shift start: %s | shift end: %s\n",
			s.ID, payroll.FormatTimestamp(s.Start), payroll.FormatTimestamp(s.End))
	}
	return nil
}

func (a *app) calculate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("calculate", flag.ContinueOnError)
	offset := fs.Int("offset", 0, "periods back from the current one")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}

	period, err := a.calc.Period(a.today(), *offset)
	if err != nil {
		return err
	}
	report, err := a.calc.Calculate(ctx, period)
	if err != nil {
		return err
	}

	hours, minutes := payroll.HoursMinutes(report.Worked)
	fmt.Fprintf(a.out, "Period: %s\n", period)
	fmt.Fprintf(a.out, "You have worked for: %d hours and %d minutes\n", hours, minutes)
	fmt.Fprintf(a.out, "You have earned %s kr.\n", report.Earned.StringFixed(2))
	return nil
}

func (a *app) period(args []string) error {
	fs := flag.NewFlagSet("period", flag.ContinueOnError)
	offset := fs.Int("offset", 0, "periods back from the current one")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}

	period, err := a.calc.Period(a.today(), *offset)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s to %s\n", payroll.FormatTimestamp(period.Start), payroll.FormatTimestamp(period.End))
	return nil
}

func (a *app) dropDatabase(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("drop-database", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}

	if !*yes {
		fmt.Fprintln(a.out, "This action will delete all shifts in the database, meaning all data will be lost.")
		fmt.Fprintln(a.out, "Are you sure you want to continue? [y/n]")
		answer, _ := bufio.NewReader(a.in).ReadString('\n')
		if !strings.EqualFold(strings.TrimSpace(answer), "y") {
			fmt.Fprintln(a.out, "The data is safe!")
			return nil
		}
	}

	if err := a.store.DropShifts(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Successfully deleted all data")
	return nil
}

func (a *app) initWage(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	baseRate := fs.Float64("base-rate", 0, "hourly wage")
	startDay := fs.Int("start-day", 0, "first day of a custom period (2-28), 0 for calendar months")
	force := fs.Bool("force", false, "overwrite an existing wage file")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}

	if _, err := os.Stat(a.wageFile); err == nil && !*force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", a.wageFile)
	}

	cfg := payroll.WageConfiguration{BaseRatePerHour: *baseRate, Period: payroll.MonthPeriod()}
	if *startDay != 0 {
		cfg.Period = payroll.CustomPeriod(*startDay)
	}
	if err := factory.Save(a.wageFile, cfg); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Wrote %s (period: %s)\n", a.wageFile, cfg.Period)
	return nil
}
