package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"findash/internal/config"
	"findash/internal/core"
	applog "findash/internal/log"
	"findash/internal/services"
	"findash/internal/storage"
)

// appContext holds what every command needs to run.
type appContext struct {
	ctx   context.Context
	svc   *services.FinanceService
	store *storage.Store
}

var cli struct {
	Months     monthsCmd     `cmd:"" help:"List months that have data."`
	Dashboard  dashboardCmd  `cmd:"" help:"Show the KPI block for a month."`
	Accounts   accountsCmd   `cmd:"" help:"List accounts with balances."`
	Categories categoriesCmd `cmd:"" help:"List categories seen in the transaction log."`
	Tx         txCmd         `cmd:"" help:"Manage transactions."`
	Budget     budgetCmd     `cmd:"" help:"Manage monthly budgets."`
	Goal       goalCmd       `cmd:"" help:"Manage savings goals."`
	Import     importCmd     `cmd:"" help:"Bulk-import transactions from a CSV file."`
	Export     exportCmd     `cmd:"" help:"Export a monthly report as CSV."`
	Backup     backupCmd     `cmd:"" help:"Snapshot the database to a file."`
	Restore    restoreCmd    `cmd:"" help:"Replace the database with a backup."`
	Seed       seedCmd       `cmd:"" help:"Seed an empty database with demo data."`
}

type monthsCmd struct{}

func (c *monthsCmd) Run(app *appContext) error {
	months, err := app.svc.AvailableMonths(app.ctx)
	if err != nil {
		return err
	}
	for _, m := range months {
		fmt.Println(m)
	}
	return nil
}

type dashboardCmd struct {
	Month string `arg:"" help:"Month as YYYY-MM."`
}

func (c *dashboardCmd) Run(app *appContext) error {
	m, err := app.svc.DashboardMetrics(app.ctx, c.Month)
	if err != nil {
		return err
	}
	fmt.Printf("Net Worth        %12.2f\n", m.NetWorth)
	fmt.Printf("Income           %12.2f\n", m.Income)
	fmt.Printf("Expense          %12.2f\n", m.Expense)
	fmt.Printf("Cashflow         %12.2f\n", m.MonthlyCashflow)
	fmt.Printf("Savings Rate     %12.1f%%\n", m.SavingsRate*100)
	fmt.Printf("Budget Planned   %12.2f\n", m.BudgetPlanned)
	fmt.Printf("Budget Spent     %12.2f\n", m.BudgetSpent)
	fmt.Printf("Budget Remaining %12.2f\n", m.BudgetRemaining)
	return nil
}

type accountsCmd struct{}

func (c *accountsCmd) Run(app *appContext) error {
	accounts, err := app.svc.Accounts(app.ctx)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		fmt.Printf("%-20s %-10s %12.2f\n", a.Name, a.Kind, a.Balance)
	}
	return nil
}

type categoriesCmd struct{}

func (c *categoriesCmd) Run(app *appContext) error {
	categories, err := app.svc.Categories(app.ctx)
	if err != nil {
		return err
	}
	for _, name := range categories {
		fmt.Println(name)
	}
	return nil
}

type txCmd struct {
	Add    txAddCmd    `cmd:"" help:"Add a transaction."`
	Update txUpdateCmd `cmd:"" help:"Update a transaction."`
	Delete txDeleteCmd `cmd:"" help:"Delete a transaction."`
	List   txListCmd   `cmd:"" help:"List a month's transactions."`
}

type txAddCmd struct {
	Date        string  `required:"" help:"Date as YYYY-MM-DD."`
	Description string  `help:"Free-text description."`
	Category    string  `help:"Category name."`
	Account     string  `help:"Account name."`
	Type        string  `required:"" help:"income or expense."`
	Amount      float64 `required:"" help:"Amount (sign is derived from type)."`
}

func (c *txAddCmd) Run(app *appContext) error {
	id, err := app.svc.AddTransaction(app.ctx, services.TransactionInput{
		Date:        c.Date,
		Description: c.Description,
		Category:    c.Category,
		Account:     c.Account,
		Type:        c.Type,
		Amount:      c.Amount,
	})
	if err != nil {
		return err
	}
	fmt.Printf("added transaction %d\n", id)
	return nil
}

type txUpdateCmd struct {
	ID          int64   `arg:"" help:"Transaction id."`
	Date        string  `required:"" help:"Date as YYYY-MM-DD."`
	Description string  `help:"Free-text description."`
	Category    string  `help:"Category name."`
	Account     string  `help:"Account name."`
	Type        string  `required:"" help:"income or expense."`
	Amount      float64 `required:"" help:"Amount (sign is derived from type)."`
}

func (c *txUpdateCmd) Run(app *appContext) error {
	return app.svc.UpdateTransaction(app.ctx, c.ID, services.TransactionInput{
		Date:        c.Date,
		Description: c.Description,
		Category:    c.Category,
		Account:     c.Account,
		Type:        c.Type,
		Amount:      c.Amount,
	})
}

type txDeleteCmd struct {
	ID int64 `arg:"" help:"Transaction id."`
}

func (c *txDeleteCmd) Run(app *appContext) error {
	return app.svc.DeleteTransaction(app.ctx, c.ID)
}

type txListCmd struct {
	Month  string `arg:"" help:"Month as YYYY-MM."`
	Search string `help:"Substring filter over description, category, account."`
	Limit  int    `help:"Limit rows (0 = all)."`
}

func (c *txListCmd) Run(app *appContext) error {
	var (
		txs []core.Transaction
		err error
	)
	if c.Limit > 0 {
		txs, err = app.svc.RecentTransactions(app.ctx, c.Month, c.Search, c.Limit)
	} else {
		txs, err = app.svc.Transactions(app.ctx, c.Month, c.Search)
	}
	if err != nil {
		return err
	}
	for _, t := range txs {
		fmt.Printf("%-5d %s %-24s %-16s %-14s %-8s %10.2f\n",
			t.ID, t.Date, t.Description, t.Category, t.Account, t.Type, t.Amount)
	}
	return nil
}

type budgetCmd struct {
	Set  budgetSetCmd  `cmd:"" help:"Set the planned amount for (month, category)."`
	List budgetListCmd `cmd:"" help:"Show a month's budget rows."`
}

type budgetSetCmd struct {
	Month    string  `arg:"" help:"Month as YYYY-MM."`
	Category string  `arg:"" help:"Category name."`
	Planned  float64 `arg:"" help:"Planned amount."`
}

func (c *budgetSetCmd) Run(app *appContext) error {
	return app.svc.SetBudget(app.ctx, c.Month, c.Category, c.Planned)
}

type budgetListCmd struct {
	Month string `arg:"" help:"Month as YYYY-MM."`
}

func (c *budgetListCmd) Run(app *appContext) error {
	rows, err := app.svc.BudgetRows(app.ctx, c.Month)
	if err != nil {
		return err
	}
	for _, r := range rows {
		fmt.Printf("%-16s planned %10.2f actual %10.2f remaining %10.2f (%.0f%%)\n",
			r.Category, r.Planned, r.Actual, r.Remaining, r.Utilization*100)
	}
	return nil
}

type goalCmd struct {
	Add    goalAddCmd    `cmd:"" help:"Add a savings goal."`
	Update goalUpdateCmd `cmd:"" help:"Update a goal."`
	Delete goalDeleteCmd `cmd:"" help:"Delete a goal."`
	List   goalListCmd   `cmd:"" help:"List goals."`
}

type goalAddCmd struct {
	Name     string  `arg:"" help:"Goal name."`
	Target   float64 `arg:"" help:"Target amount (must be positive)."`
	Current  float64 `help:"Amount saved so far."`
	Deadline string  `help:"Optional deadline as YYYY-MM-DD."`
}

func (c *goalAddCmd) Run(app *appContext) error {
	id, err := app.svc.AddGoal(app.ctx, services.GoalInput{
		Name: c.Name, Target: c.Target, Current: c.Current, Deadline: c.Deadline,
	})
	if err != nil {
		return err
	}
	fmt.Printf("added goal %d\n", id)
	return nil
}

type goalUpdateCmd struct {
	ID       int64   `arg:"" help:"Goal id."`
	Name     string  `arg:"" help:"Goal name."`
	Target   float64 `arg:"" help:"Target amount (must be positive)."`
	Current  float64 `help:"Amount saved so far."`
	Deadline string  `help:"Optional deadline as YYYY-MM-DD."`
}

func (c *goalUpdateCmd) Run(app *appContext) error {
	return app.svc.UpdateGoal(app.ctx, c.ID, services.GoalInput{
		Name: c.Name, Target: c.Target, Current: c.Current, Deadline: c.Deadline,
	})
}

type goalDeleteCmd struct {
	ID int64 `arg:"" help:"Goal id."`
}

func (c *goalDeleteCmd) Run(app *appContext) error {
	return app.svc.DeleteGoal(app.ctx, c.ID)
}

type goalListCmd struct{}

func (c *goalListCmd) Run(app *appContext) error {
	goals, err := app.svc.Goals(app.ctx)
	if err != nil {
		return err
	}
	for _, g := range goals {
		deadline := g.Deadline
		if deadline == "" {
			deadline = "-"
		}
		fmt.Printf("%-5d %-24s %10.2f / %10.2f (%.0f%%) due %s\n",
			g.ID, g.Name, g.Current, g.Target, g.Progress()*100, deadline)
	}
	summary, err := app.svc.GoalsSummary(app.ctx)
	if err != nil {
		return err
	}
	fmt.Printf("total %10.2f / %10.2f (%.0f%%)\n",
		summary.TotalCurrent, summary.TotalTarget, summary.Progress*100)
	return nil
}

type importCmd struct {
	Path string `arg:"" help:"CSV file with date, description, category, account, amount columns."`
}

func (c *importCmd) Run(app *appContext) error {
	imported, skipped, err := app.svc.ImportCSV(app.ctx, c.Path)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d, skipped %d duplicates\n", imported, skipped)
	return nil
}

type exportCmd struct {
	Month  string `arg:"" help:"Month as YYYY-MM."`
	Dest   string `arg:"" help:"Destination file (.csv is forced)."`
	Search string `help:"Substring filter applied to the transaction section."`
}

func (c *exportCmd) Run(app *appContext) error {
	path, err := app.svc.ExportMonthlyReportCSV(app.ctx, c.Month, c.Dest, c.Search)
	if err != nil {
		return err
	}
	fmt.Printf("report written to %s\n", path)
	return nil
}

type backupCmd struct {
	Dest string `arg:"" help:"Destination file (.db is forced)."`
}

func (c *backupCmd) Run(app *appContext) error {
	path, err := app.svc.BackupDatabase(app.ctx, c.Dest)
	if err != nil {
		return err
	}
	fmt.Printf("backup written to %s\n", path)
	return nil
}

type restoreCmd struct {
	Src string `arg:"" help:"Backup file to restore from."`
}

func (c *restoreCmd) Run(app *appContext) error {
	return app.svc.RestoreDatabase(app.ctx, c.Src)
}

type seedCmd struct{}

func (c *seedCmd) Run(app *appContext) error {
	if err := app.store.SeedDemoData(app.ctx, time.Now()); err != nil {
		return err
	}
	fmt.Println("demo data seeded (empty store only)")
	return nil
}

func main() {
	// .env is optional; real env vars win either way
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := applog.New(applog.Config{
		Level:     logLevel(cfg.LogLevel),
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "error", err, "path", cfg.DBPath)
		os.Exit(1)
	}
	defer store.Close()

	app := &appContext{
		ctx:   context.Background(),
		svc:   services.NewFinanceService(store),
		store: store,
	}

	parsed := kong.Parse(&cli,
		kong.Name("findash"),
		kong.Description("Personal finance ledger: accounts, transactions, budgets and goals."))
	parsed.FatalIfErrorf(parsed.Run(app))
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
