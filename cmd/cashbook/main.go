package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/cashbook/cashbook/config"
	"github.com/cashbook/cashbook/internal/application/usecase/report"
	"github.com/cashbook/cashbook/internal/client/api"
	"github.com/cashbook/cashbook/internal/client/localstore"
	"github.com/cashbook/cashbook/internal/client/session"
	"github.com/cashbook/cashbook/internal/domain/entity"
)

const usage = `Usage: cashbook <command> [arguments]

Account:
  register <username> <password>    create an account and log in
  login <username> <password>       log in
  logout                            log out and clear local data
  profile [--name N] [--email E] [--mobile M]

Books:
  books [--search Q]                list books in the current business
  book <id> [--type income|expense] [--range BUCKET] [--search Q]
            [--start YYYY-MM-DD --end YYYY-MM-DD]
  add-book <name>
  delete-book <id>

Transactions:
  add <book-id> <amount> <description> [--category C] [--mode M]
  edit <book-id> <tx-id> [--amount A] [--text T] [--category C] [--mode M]
  delete <book-id> <tx-id>

Reports:
  report <book-id> [--by category|day] [--range BUCKET]
  budget set <category> <amount> | remove <category> | progress <book-id>

Settings:
  business list|add|rename|delete|use <args>
  category list|add|rename|delete <args>

Range buckets: all today yesterday this_week last_week this_month last_month custom
`

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	store := localstore.New(cfg.Client.DataDir)
	client := api.NewClient(cfg.Client.ServerURL, cfg.Client.RequestTimeout)

	sess, err := session.New(store, client)
	if err != nil {
		fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	app := &app{sess: sess, out: os.Stdout}
	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	if errors.Is(err, session.ErrSessionExpired) || errors.Is(err, session.ErrNotAuthenticated) {
		fmt.Fprintln(os.Stderr, "cashbook:", err)
		os.Exit(1)
	}
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		fmt.Fprintln(os.Stderr, "cashbook:", statusErr.Msg)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, "cashbook:", err)
	os.Exit(1)
}

type app struct {
	sess *session.Session
	out  *os.File
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return a.register(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.logout()
	case "profile":
		return a.profile(ctx, args)
	case "books":
		return a.books(ctx, args)
	case "book":
		return a.book(ctx, args)
	case "add-book":
		return a.addBook(ctx, args)
	case "delete-book":
		return a.deleteBook(ctx, args)
	case "add":
		return a.addTransaction(ctx, args)
	case "edit":
		return a.editTransaction(ctx, args)
	case "delete":
		return a.deleteTransaction(ctx, args)
	case "report":
		return a.report(ctx, args)
	case "budget":
		return a.budget(ctx, args)
	case "business":
		return a.business(ctx, args)
	case "category":
		return a.category(ctx, args)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q (run 'cashbook help')", command)
	}
}

func (a *app) register(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: cashbook register <username> <password>")
	}
	if err := a.sess.Register(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered and logged in as %s\n", args[0])
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: cashbook login <username> <password>")
	}
	if err := a.sess.Login(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", args[0])
	return nil
}

func (a *app) logout() error {
	if err := a.sess.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *app) profile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	mobile := fs.String("mobile", "", "mobile number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := a.load(ctx)
	if err != nil {
		return err
	}

	if *name == "" && *email == "" && *mobile == "" {
		fmt.Fprintf(a.out, "Name:   %s\n", data.Profile.Name)
		fmt.Fprintf(a.out, "Email:  %s\n", data.Profile.Email)
		fmt.Fprintf(a.out, "Mobile: %s\n", data.Profile.Mobile)
		return nil
	}

	return a.sess.Mutate(ctx, func(d *entity.UserData) {
		p := d.Profile
		if *name != "" {
			p.Name = *name
		}
		if *email != "" {
			p.Email = *email
		}
		if *mobile != "" {
			p.Mobile = *mobile
		}
		d.UpdateProfile(p)
	})
}

func (a *app) books(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("books", flag.ContinueOnError)
	search := fs.String("search", "", "filter books by name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := a.load(ctx)
	if err != nil {
		return err
	}

	books := report.FilterBooks(data.Books, data.CurrentBusiness, *search)
	if len(books) == 0 {
		fmt.Fprintf(a.out, "No books in %s\n", data.CurrentBusiness)
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tNAME\tENTRIES\tBALANCE\n")
	for i := range books {
		b := &books[i]
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", b.ID, b.Name, len(b.Transactions), report.Balance(b))
	}
	return w.Flush()
}

func (a *app) book(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("book", flag.ContinueOnError)
	entryType := fs.String("type", "all", "all, income or expense")
	rangeName := fs.String("range", "all", "date range bucket")
	search := fs.String("search", "", "search descriptions")
	start := fs.String("start", "", "custom range start (YYYY-MM-DD)")
	end := fs.String("end", "", "custom range end (YYYY-MM-DD)")
	if len(args) < 1 {
		return errors.New("usage: cashbook book <id> [flags]")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid book id %q", args[0])
	}
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	data, err := a.load(ctx)
	if err != nil {
		return err
	}
	book := data.FindBook(id)
	if book == nil {
		return fmt.Errorf("book %d not found", id)
	}

	f, err := buildFilter(*search, *entryType, *rangeName, *start, *end)
	if err != nil {
		return err
	}

	now := time.Now()
	txs := report.SortedDesc(report.FilterTransactions(book, f, now))
	running := report.RunningBalances(book)
	in, out := report.Totals(book)

	fmt.Fprintf(a.out, "%s (%s)\n", book.Name, book.EffectiveBusiness())
	fmt.Fprintf(a.out, "Balance: %s  In: %s  Out: %s\n\n", report.Balance(book), in, out)

	if len(txs) == 0 {
		fmt.Fprintln(a.out, "No matching transactions")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tDATE\tTIME\tDESCRIPTION\tCATEGORY\tMODE\tAMOUNT\tBALANCE\n")
	for _, g := range report.GroupByDate(txs) {
		for _, tx := range g.Transactions {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				tx.ID, tx.Date, tx.Time, tx.Text, tx.DisplayCategory(),
				tx.PaymentMode, tx.Amount, running[tx.ID])
		}
	}
	return w.Flush()
}

func (a *app) addBook(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: cashbook add-book <name>")
	}
	return a.mutateLoaded(ctx, func(d *entity.UserData) error {
		book := d.AddBook(args[0], time.Now())
		fmt.Fprintf(a.out, "Created book %q (id %d) in %s\n", book.Name, book.ID, book.Business)
		return nil
	})
}

func (a *app) deleteBook(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: cashbook delete-book <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid book id %q", args[0])
	}
	return a.mutateLoaded(ctx, func(d *entity.UserData) error {
		if !d.DeleteBook(id) {
			return fmt.Errorf("book %d not found", id)
		}
		fmt.Fprintf(a.out, "Deleted book %d\n", id)
		return nil
	})
}

func (a *app) addTransaction(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	category := fs.String("category", entity.FallbackCategory, "transaction category")
	mode := fs.String("mode", entity.DefaultPaymentMode, "payment mode")
	if len(args) < 3 {
		return errors.New("usage: cashbook add <book-id> <amount> <description> [flags]")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid book id %q", args[0])
	}
	amount, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("invalid amount %q", args[1])
	}
	if amount.IsZero() {
		return errors.New("amount must be non-zero (negative for expenses)")
	}
	text := args[2]
	if err := fs.Parse(args[3:]); err != nil {
		return err
	}

	return a.mutateLoaded(ctx, func(d *entity.UserData) error {
		book := d.FindBook(id)
		if book == nil {
			return fmt.Errorf("book %d not found", id)
		}
		now := time.Now()
		tx := entity.NewTransaction(text, amount, *category, *mode, now)
		book.AddTransaction(tx, now)
		fmt.Fprintf(a.out, "Added %s to %s (tx %d), balance %s\n",
			tx.Amount, book.Name, tx.ID, report.Balance(book))
		return nil
	})
}

func (a *app) editTransaction(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	amountFlag := fs.String("amount", "", "new signed amount")
	text := fs.String("text", "", "new description")
	category := fs.String("category", "", "new category")
	mode := fs.String("mode", "", "new payment mode")
	if len(args) < 2 {
		return errors.New("usage: cashbook edit <book-id> <tx-id> [flags]")
	}
	bookID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid book id %q", args[0])
	}
	txID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid transaction id %q", args[1])
	}
	if err := fs.Parse(args[2:]); err != nil {
		return err
	}
	if *amountFlag == "" && *text == "" && *category == "" && *mode == "" {
		return errors.New("nothing to change, pass at least one flag")
	}

	return a.mutateLoaded(ctx, func(d *entity.UserData) error {
		book := d.FindBook(bookID)
		if book == nil {
			return fmt.Errorf("book %d not found", bookID)
		}
		var tx *entity.Transaction
		for i := range book.Transactions {
			if book.Transactions[i].ID == txID {
				tx = &book.Transactions[i]
				break
			}
		}
		if tx == nil {
			return fmt.Errorf("transaction %d not found in book %d", txID, bookID)
		}
		updated := *tx
		if *amountFlag != "" {
			amt, err := decimal.NewFromString(*amountFlag)
			if err != nil {
				return fmt.Errorf("invalid amount %q", *amountFlag)
			}
			updated.Amount = amt
		}
		if *text != "" {
			updated.Text = *text
		}
		if *category != "" {
			updated.Category = *category
		}
		if *mode != "" {
			updated.PaymentMode = *mode
		}
		book.UpdateTransaction(updated, time.Now())
		fmt.Fprintf(a.out, "Updated transaction %d, balance %s\n", txID, report.Balance(book))
		return nil
	})
}

func (a *app) deleteTransaction(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: cashbook delete <book-id> <tx-id>")
	}
	bookID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid book id %q", args[0])
	}
	txID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid transaction id %q", args[1])
	}
	return a.mutateLoaded(ctx, func(d *entity.UserData) error {
		book := d.FindBook(bookID)
		if book == nil {
			return fmt.Errorf("book %d not found", bookID)
		}
		if !book.RemoveTransaction(txID, time.Now()) {
			return fmt.Errorf("transaction %d not found in book %d", txID, bookID)
		}
		fmt.Fprintf(a.out, "Deleted transaction %d, balance %s\n", txID, report.Balance(book))
		return nil
	})
}

func (a *app) report(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	by := fs.String("by", "category", "category or day")
	rangeName := fs.String("range", "all", "date range bucket")
	if len(args) < 1 {
		return errors.New("usage: cashbook report <book-id> [flags]")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid book id %q", args[0])
	}
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	data, err := a.load(ctx)
	if err != nil {
		return err
	}
	book := data.FindBook(id)
	if book == nil {
		return fmt.Errorf("book %d not found", id)
	}

	f, err := buildFilter("", "all", *rangeName, "", "")
	if err != nil {
		return err
	}
	txs := report.FilterTransactions(book, f, time.Now())

	var rows []report.BucketTotal
	switch *by {
	case "category":
		rows = report.AggregateByCategory(txs)
	case "day":
		rows = report.AggregateByDay(txs)
	default:
		return fmt.Errorf("unknown report dimension %q (want category or day)", *by)
	}

	if len(rows) == 0 {
		fmt.Fprintln(a.out, "No transactions in range")
		return nil
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tIN\tOUT\tNET\n", strings.ToUpper(*by))
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", row.Key, row.In, row.Out, row.Net())
	}
	return w.Flush()
}

func (a *app) budget(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: cashbook budget set|remove|progress <args>")
	}
	switch args[0] {
	case "set":
		if len(args) != 3 {
			return errors.New("usage: cashbook budget set <category> <amount>")
		}
		amount, err := decimal.NewFromString(args[2])
		if err != nil {
			return fmt.Errorf("invalid amount %q", args[2])
		}
		return a.mutateLoaded(ctx, func(d *entity.UserData) error {
			if !d.SetBudget(args[1], amount) {
				return errors.New("budget amount must be positive")
			}
			fmt.Fprintf(a.out, "Budget for %s set to %s\n", args[1], amount)
			return nil
		})
	case "remove":
		if len(args) != 2 {
			return errors.New("usage: cashbook budget remove <category>")
		}
		return a.mutateLoaded(ctx, func(d *entity.UserData) error {
			d.RemoveBudget(args[1])
			fmt.Fprintf(a.out, "Budget for %s removed\n", args[1])
			return nil
		})
	case "progress":
		if len(args) != 2 {
			return errors.New("usage: cashbook budget progress <book-id>")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid book id %q", args[1])
		}
		data, err := a.load(ctx)
		if err != nil {
			return err
		}
		book := data.FindBook(id)
		if book == nil {
			return fmt.Errorf("book %d not found", id)
		}
		statuses := report.BudgetProgress(data.CategoryBudgets, report.CategorySpending(book.Transactions))
		if len(statuses) == 0 {
			fmt.Fprintln(a.out, "No budgets set")
			return nil
		}
		w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "CATEGORY\tBUDGET\tSPENT\tPROGRESS\n")
		for _, s := range statuses {
			marker := ""
			if s.OverBudget {
				marker = "  OVER"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%.1f%%%s\n", s.Category, s.Budget, s.Spent, s.Percent, marker)
		}
		return w.Flush()
	default:
		return fmt.Errorf("unknown budget subcommand %q", args[0])
	}
}

func (a *app) business(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: cashbook business list|add|rename|delete|use <args>")
	}
	switch args[0] {
	case "list":
		data, err := a.load(ctx)
		if err != nil {
			return err
		}
		for _, name := range data.Businesses {
			if name == data.CurrentBusiness {
				fmt.Fprintf(a.out, "* %s\n", name)
			} else {
				fmt.Fprintf(a.out, "  %s\n", name)
			}
		}
		return nil
	case "add":
		if len(args) != 2 {
			return errors.New("usage: cashbook business add <name>")
		}
		return a.mutateLoaded(ctx, func(d *entity.UserData) error {
			if !d.AddBusiness(args[1]) {
				return fmt.Errorf("business %q already exists", args[1])
			}
			fmt.Fprintf(a.out, "Added business %s\n", args[1])
			return nil
		})
	case "rename":
		if len(args) != 3 {
			return errors.New("usage: cashbook business rename <old> <new>")
		}
		return a.mutateLoaded(ctx, func(d *entity.UserData) error {
			if !d.RenameBusiness(args[1], args[2]) {
				return fmt.Errorf("cannot rename business %q to %q", args[1], args[2])
			}
			fmt.Fprintf(a.out, "Renamed business %s to %s\n", args[1], args[2])
			return nil
		})
	case "delete":
		if len(args) != 2 {
			return errors.New("usage: cashbook business delete <name>")
		}
		return a.mutateLoaded(ctx, func(d *entity.UserData) error {
			if !d.DeleteBusiness(args[1]) {
				return fmt.Errorf("business %q not found", args[1])
			}
			fmt.Fprintf(a.out, "Deleted business %s (current: %s)\n", args[1], d.CurrentBusiness)
			return nil
		})
	case "use":
		if len(args) != 2 {
			return errors.New("usage: cashbook business use <name>")
		}
		return a.mutateLoaded(ctx, func(d *entity.UserData) error {
			if !d.SetCurrentBusiness(args[1]) {
				return fmt.Errorf("business %q not found", args[1])
			}
			fmt.Fprintf(a.out, "Switched to %s\n", args[1])
			return nil
		})
	default:
		return fmt.Errorf("unknown business subcommand %q", args[0])
	}
}

func (a *app) category(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: cashbook category list|add|rename|delete <args>")
	}
	switch args[0] {
	case "list":
		data, err := a.load(ctx)
		if err != nil {
			return err
		}
		for _, name := range data.Categories {
			if budget, ok := data.CategoryBudgets[name]; ok {
				fmt.Fprintf(a.out, "%s (budget %s)\n", name, budget)
			} else {
				fmt.Fprintln(a.out, name)
			}
		}
		return nil
	case "add":
		if len(args) != 2 {
			return errors.New("usage: cashbook category add <name>")
		}
		return a.mutateLoaded(ctx, func(d *entity.UserData) error {
			if !d.AddCategory(args[1]) {
				return fmt.Errorf("category %q already exists", args[1])
			}
			fmt.Fprintf(a.out, "Added category %s\n", args[1])
			return nil
		})
	case "rename":
		if len(args) != 3 {
			return errors.New("usage: cashbook category rename <old> <new>")
		}
		return a.mutateLoaded(ctx, func(d *entity.UserData) error {
			if !d.RenameCategory(args[1], args[2]) {
				return fmt.Errorf("cannot rename category %q to %q", args[1], args[2])
			}
			fmt.Fprintf(a.out, "Renamed category %s to %s\n", args[1], args[2])
			return nil
		})
	case "delete":
		if len(args) != 2 {
			return errors.New("usage: cashbook category delete <name>")
		}
		return a.mutateLoaded(ctx, func(d *entity.UserData) error {
			if !d.DeleteCategory(args[1]) {
				return fmt.Errorf("category %q not found", args[1])
			}
			fmt.Fprintf(a.out, "Deleted category %s (entries moved to %s)\n", args[1], entity.FallbackCategory)
			return nil
		})
	default:
		return fmt.Errorf("unknown category subcommand %q", args[0])
	}
}

// load ensures a snapshot is available, loading it on first use.
func (a *app) load(ctx context.Context) (*entity.UserData, error) {
	if a.sess.Snapshot() == nil {
		if err := a.sess.Load(ctx); err != nil {
			return nil, err
		}
	}
	return a.sess.Snapshot(), nil
}

// mutateLoaded loads the snapshot, then applies a mutation that may itself
// fail validation before anything is saved.
func (a *app) mutateLoaded(ctx context.Context, fn func(*entity.UserData) error) error {
	if _, err := a.load(ctx); err != nil {
		return err
	}
	var mutErr error
	err := a.sess.Mutate(ctx, func(d *entity.UserData) {
		mutErr = fn(d)
	})
	if mutErr != nil {
		return mutErr
	}
	return err
}

func buildFilter(query, entryType, rangeName, start, end string) (report.Filter, error) {
	f := report.Filter{Query: query}

	switch report.EntryType(entryType) {
	case report.EntryTypeAll, report.EntryTypeIncome, report.EntryTypeExpense:
		f.Type = report.EntryType(entryType)
	default:
		return f, fmt.Errorf("unknown type %q (want all, income or expense)", entryType)
	}

	bucket := report.RangeBucket(rangeName)
	switch bucket {
	case report.RangeAll, report.RangeToday, report.RangeYesterday,
		report.RangeThisWeek, report.RangeLastWeek,
		report.RangeThisMonth, report.RangeLastMonth:
		f.Range = report.DateRange{Bucket: bucket}
	case report.RangeCustom:
		if start == "" || end == "" {
			return f, errors.New("custom range needs --start and --end")
		}
		s, err := time.ParseInLocation("2006-01-02", start, time.Local)
		if err != nil {
			return f, fmt.Errorf("invalid start date %q", start)
		}
		e, err := time.ParseInLocation("2006-01-02", end, time.Local)
		if err != nil {
			return f, fmt.Errorf("invalid end date %q", end)
		}
		f.Range = report.DateRange{Bucket: bucket, Start: s, End: e}
	default:
		return f, fmt.Errorf("unknown range %q", rangeName)
	}

	return f, nil
}
