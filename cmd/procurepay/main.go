// Command procurepay is the terminal client for the ProcurePay purchase
// request workflow. Each invocation performs one operation against the API
// using a token persisted between runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"golang.org/x/term"

	"procurepay/internal/client"
	"procurepay/internal/config"
	"procurepay/internal/export"
	"procurepay/internal/model"
	"procurepay/internal/session"
	"procurepay/internal/view"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.Load()
	log := config.NewLogger()
	sess := session.New()
	if err := sess.Load(cfg.TokenFile); err != nil {
		log.WithError(err).Warn("stored session unusable, starting anonymous")
	}
	app := &app{
		cfg:    cfg,
		sess:   sess,
		client: client.New(cfg, sess, log),
	}

	cmd, args := os.Args[1], os.Args[2:]
	if err := app.run(context.Background(), cmd, args); err != nil {
		if client.IsAuth(err) {
			fmt.Fprintln(os.Stderr, "Not logged in or session expired. Run: procurepay login")
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: procurepay <command> [flags]

Account:
  login             -email (password prompted)
  register          -name -email -role (password prompted)
  logout
  whoami

Requests (staff):
  requests          [-q query] [-status all|pending_l1|...]
  show              -id N
  create            -title -desc -amount -qty -dept -vendor -category -urgency -proforma FILE
  update            -id N [same flags as create, -proforma optional]
  delete            -id N

Approvals (approvers):
  pending
  my-approvals
  approve           -id N [-comment text]
  reject            -id N [-comment text]

Finance:
  finance           [-q query] [-docs all|complete|has-receipt|missing-receipt]
  purchase-orders
  place-order       -id N -po FILE
  upload-receipt    -id N -receipt FILE
  validate-receipt  -id N -status received|partially_received|not_received [-comment text]
  complete          -id N
  export            [-out FILE]`)
}

type app struct {
	cfg    config.Config
	sess   *session.Session
	client *client.Client
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "register":
		return a.register(ctx, args)
	case "logout":
		a.client.Logout()
		return session.Forget(a.cfg.TokenFile)
	case "whoami":
		return a.whoami()
	case "requests":
		return a.requests(ctx, args)
	case "show":
		return a.show(ctx, args)
	case "create":
		return a.create(ctx, args)
	case "update":
		return a.update(ctx, args)
	case "delete":
		return a.delete(ctx, args)
	case "pending":
		return a.list(ctx, args, a.client.PendingApprovals)
	case "my-approvals":
		return a.list(ctx, args, a.client.MyApprovals)
	case "approve":
		return a.decide(ctx, args, a.client.Approve)
	case "reject":
		return a.decide(ctx, args, a.client.Reject)
	case "finance":
		return a.finance(ctx, args)
	case "purchase-orders":
		return a.list(ctx, args, a.client.PurchaseOrders)
	case "place-order":
		return a.placeOrder(ctx, args)
	case "upload-receipt":
		return a.uploadReceipt(ctx, args)
	case "validate-receipt":
		return a.validateReceipt(ctx, args)
	case "complete":
		return a.complete(ctx, args)
	case "export":
		return a.export(ctx, args)
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// promptPassword reads a password without echo, falling back to a plain read
// when stdin is not a terminal (tests, pipes).
func promptPassword(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		return string(raw), err
	}
	var pw string
	_, err := fmt.Scanln(&pw)
	return pw, err
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	fs.Parse(args)
	if *email == "" {
		return fmt.Errorf("-email required")
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	if err := a.client.Login(ctx, *email, password); err != nil {
		return err
	}
	if err := a.sess.Save(a.cfg.TokenFile); err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (%s)\n", a.sess.Name(), a.sess.Role())
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	role := fs.String("role", "staff", "staff|approver1|approver2|finance")
	fs.Parse(args)
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	in := client.RegisterInput{Name: *name, Email: *email, Password: password, Role: *role}
	if err := a.client.Register(ctx, in); err != nil {
		return err
	}
	fmt.Println("Account created. Run: procurepay login -email", *email)
	return nil
}

func (a *app) whoami() error {
	if !a.sess.Active() {
		fmt.Println("Not logged in.")
		return nil
	}
	fmt.Printf("%s (%s), session expires %s\n",
		a.sess.Name(), a.sess.Role(), a.sess.ExpiresAt().Local().Format("2006-01-02 15:04"))
	return nil
}

func (a *app) requests(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("requests", flag.ExitOnError)
	query := fs.String("q", "", "search title, requester or PO number")
	status := fs.String("status", view.StatusAll, "status filter")
	fs.Parse(args)

	all, err := a.client.ListRequests(ctx)
	if err != nil {
		return err
	}
	printRequests(view.Filter(all, *query, *status))
	printStats(view.Summarize(all))
	return nil
}

func (a *app) show(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	id := fs.Int64("id", 0, "request id")
	fs.Parse(args)
	r, err := a.client.GetRequest(ctx, *id)
	if err != nil {
		return err
	}
	printDetail(*r)
	return nil
}

func requestFlags(fs *flag.FlagSet) (*client.RequestInput, *string) {
	in := &client.RequestInput{}
	fs.StringVar(&in.Title, "title", "", "short title")
	fs.StringVar(&in.Description, "desc", "", "what and why")
	fs.StringVar(&in.Amount, "amount", "", "total amount, e.g. 1234.50")
	fs.IntVar(&in.Quantity, "qty", 0, "item count")
	fs.StringVar(&in.Department, "dept", "", "requesting department")
	fs.StringVar(&in.VendorName, "vendor", "", "vendor name")
	fs.StringVar(&in.Category, "category", "", "spend category")
	fs.StringVar(&in.Urgency, "urgency", model.UrgencyNormal, "low|normal|high|critical")
	proforma := fs.String("proforma", "", "path to the proforma invoice")
	return in, proforma
}

func openUpload(field, path string) (*client.FileUpload, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	up := &client.FileUpload{Field: field, Filename: filepath.Base(path), Content: f}
	return up, func() { f.Close() }, nil
}

func (a *app) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	in, proforma := requestFlags(fs)
	fs.Parse(args)
	if *proforma == "" {
		return fmt.Errorf("-proforma required: a proforma invoice must accompany every request")
	}
	up, done, err := openUpload("proforma_file", *proforma)
	if err != nil {
		return err
	}
	defer done()
	r, err := a.client.CreateRequest(ctx, *in, up)
	if err != nil {
		return err
	}
	fmt.Printf("Created request #%d (%s)\n", r.ID, model.FactsOrUnknown(r.Status).Label)
	return nil
}

func (a *app) update(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	id := fs.Int64("id", 0, "request id")
	in, proforma := requestFlags(fs)
	fs.Parse(args)

	var up *client.FileUpload
	if *proforma != "" {
		opened, done, err := openUpload("proforma_file", *proforma)
		if err != nil {
			return err
		}
		defer done()
		up = opened
	}
	r, err := a.client.UpdateRequest(ctx, *id, *in, up)
	if err != nil {
		return err
	}
	fmt.Printf("Updated request #%d\n", r.ID)
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.Int64("id", 0, "request id")
	fs.Parse(args)
	if err := a.client.DeleteRequest(ctx, *id); err != nil {
		return err
	}
	fmt.Printf("Deleted request #%d\n", *id)
	return nil
}

func (a *app) list(ctx context.Context, args []string, fetch func(context.Context) ([]model.Request, error)) error {
	flag.NewFlagSet("list", flag.ExitOnError).Parse(args)
	requests, err := fetch(ctx)
	if err != nil {
		return err
	}
	printRequests(requests)
	return nil
}

func (a *app) decide(ctx context.Context, args []string, act func(context.Context, int64, string) (*model.Request, error)) error {
	fs := flag.NewFlagSet("decide", flag.ExitOnError)
	id := fs.Int64("id", 0, "request id")
	comment := fs.String("comment", "", "optional review comment")
	fs.Parse(args)
	r, err := act(ctx, *id, *comment)
	if err != nil {
		return err
	}
	fmt.Printf("Request #%d is now %s\n", r.ID, model.FactsOrUnknown(r.Status).Label)
	return nil
}

func (a *app) finance(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("finance", flag.ExitOnError)
	query := fs.String("q", "", "search title, requester or PO number")
	docs := fs.String("docs", view.DocumentsAll, "all|complete|has-receipt|missing-receipt")
	fs.Parse(args)

	requests, err := a.client.FinanceRequests(ctx)
	if err != nil {
		return err
	}
	filtered := view.FilterDocuments(requests, *query, *docs)
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAMOUNT\tSTATUS\tPO\tDOCUMENTS")
	for _, r := range filtered {
		fmt.Fprintf(tw, "#%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Title, r.Amount.Display(), model.FactsOrUnknown(r.Status).Label,
			orDash(r.PONumber()), view.DocumentState(r))
	}
	return tw.Flush()
}

func (a *app) placeOrder(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("place-order", flag.ExitOnError)
	id := fs.Int64("id", 0, "request id")
	po := fs.String("po", "", "path to the purchase order document")
	fs.Parse(args)
	if *po == "" {
		return fmt.Errorf("-po required")
	}
	up, done, err := openUpload("purchase_order_file", *po)
	if err != nil {
		return err
	}
	defer done()
	r, err := a.client.PlaceOrder(ctx, *id, *up)
	if err != nil {
		return err
	}
	fmt.Printf("Order placed for request #%d (%s)\n", r.ID, r.PONumber())
	return nil
}

func (a *app) uploadReceipt(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload-receipt", flag.ExitOnError)
	id := fs.Int64("id", 0, "request id")
	receipt := fs.String("receipt", "", "path to the delivery receipt")
	fs.Parse(args)
	if *receipt == "" {
		return fmt.Errorf("-receipt required")
	}
	up, done, err := openUpload("receipt_file", *receipt)
	if err != nil {
		return err
	}
	defer done()
	r, err := a.client.UploadReceipt(ctx, *id, *up)
	if err != nil {
		return err
	}
	fmt.Printf("Receipt attached to request #%d\n", r.ID)
	return nil
}

func (a *app) validateReceipt(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("validate-receipt", flag.ExitOnError)
	id := fs.Int64("id", 0, "request id")
	status := fs.String("status", "", "received|partially_received|not_received")
	comment := fs.String("comment", "", "optional validation note")
	fs.Parse(args)
	in := client.ReceiptValidationInput{Status: *status, Comment: *comment}
	r, err := a.client.ValidateReceipt(ctx, *id, in)
	if err != nil {
		return err
	}
	fmt.Printf("Request #%d is now %s\n", r.ID, model.FactsOrUnknown(r.Status).Label)
	return nil
}

func (a *app) complete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("complete", flag.ExitOnError)
	id := fs.Int64("id", 0, "request id")
	fs.Parse(args)
	r, err := a.client.Complete(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Printf("Request #%d is now %s\n", r.ID, model.FactsOrUnknown(r.Status).Label)
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "requests.xlsx", "output workbook path")
	fs.Parse(args)
	requests, err := a.client.FinanceRequests(ctx)
	if err != nil {
		return err
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.Excel(f, requests); err != nil {
		return err
	}
	fmt.Printf("Wrote %d requests to %s\n", len(requests), *out)
	return nil
}

// --- Rendering ---

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printRequests(requests []model.Request) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAMOUNT\tSTATUS\tPROGRESS\tURGENT")
	for _, r := range requests {
		facts := model.FactsOrUnknown(r.Status)
		urgent := ""
		if r.IsUrgent() {
			urgent = "URGENT"
		}
		fmt.Fprintf(tw, "#%d\t%s\t%s\t%s\t%d%%\t%s\n",
			r.ID, r.Title, r.Amount.Display(), facts.Label, facts.Progress, urgent)
	}
	tw.Flush()
}

func printStats(s view.Stats) {
	fmt.Printf("\nTotal %d | Pending %d | Approved %d | Rejected %d | Urgent %d\n",
		s.Total, s.Pending, s.Approved, s.Rejected, s.Urgent)
}

func printDetail(r model.Request) {
	facts := model.FactsOrUnknown(r.Status)
	fmt.Printf("Request #%d: %s\n", r.ID, r.Title)
	fmt.Printf("  Status:      %s (%d%%): %s\n", facts.Label, facts.Progress, facts.Description)
	fmt.Printf("  Amount:      %s (%d items)\n", r.Amount.Display(), r.Quantity)
	fmt.Printf("  Vendor:      %s\n", r.VendorName)
	fmt.Printf("  Department:  %s\n", r.Department)
	fmt.Printf("  Category:    %s\n", r.Category)
	fmt.Printf("  Urgency:     %s\n", r.Urgency)
	fmt.Printf("  Requested:   %s by %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04"), r.CreatedByName)
	if po := r.PONumber(); po != "" {
		fmt.Printf("  PO Number:   %s\n", po)
	}
	fmt.Printf("  Documents:   %s\n", view.DocumentState(r))
	for _, a := range r.Approvals {
		fmt.Printf("  L%d review:  %s by %s", a.Level, a.Decision, a.ApproverName)
		if a.Comment != "" {
			fmt.Printf(" (%q)", a.Comment)
		}
		fmt.Println()
	}
	if v := r.ReceiptValidation; v != nil {
		fmt.Printf("  Receipt:     %s", v.Status)
		if v.Comment != "" {
			fmt.Printf(" (%q)", v.Comment)
		}
		fmt.Println()
	}
}
