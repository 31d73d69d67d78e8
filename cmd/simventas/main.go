package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"simventas/internal/activity"
	"simventas/internal/api"
	"simventas/internal/app"
	"simventas/internal/carrier"
	"simventas/internal/config"
	"simventas/internal/listener"
	"simventas/internal/pipeline"
	"simventas/internal/sales"
	"simventas/internal/sheet"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	a, err := app.New(cfg)
	must(err)
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := os.Args[1]
	args := os.Args[2:]
	switch cmd {
	case "sales:add":
		runBatch(ctx, a, cmd, args, sales.OpAddSales)
	case "sales:import":
		runBatch(ctx, a, cmd, args, sales.OpImportSales)
	case "sales:update":
		runBatch(ctx, a, cmd, args, "")
	case "sales:delete":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		month := fs.String("month", cfg.DefaultMonth, "month collection, e.g. Septiembre_2025")
		numeros := fs.String("numeros", "", "comma separated NUMERO list")
		actor := fs.String("actor", "", "user id recorded in the activity log")
		_ = fs.Parse(args)
		list := splitList(*numeros)
		if len(list) == 0 {
			must(fmt.Errorf("--numeros is required"))
		}
		out, err := a.Sales.DeleteSales(withActor(ctx, *actor), *month, list)
		must(err)
		printJSON(out)
	case "months:list":
		months, err := a.Sales.ListMonths(ctx)
		must(err)
		for _, m := range months {
			fmt.Println(m)
		}
	case "template:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		op := fs.String("op", "", "operation name")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(args)
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}
		parsed, err := sales.ParseOperation(*op)
		must(err)
		cols, err := sales.TemplateColumns(parsed)
		must(err)
		must(sheet.SaveTemplate(*out, cols))
		fmt.Printf("template %s written to %s\n", parsed, *out)
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		month := fs.String("month", cfg.DefaultMonth, "month collection")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(args)
		if strings.TrimSpace(*month) == "" || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--month and --out are required"))
		}
		recs, err := a.Sales.ListSales(ctx, *month)
		must(err)
		must(sheet.SaveSales(*out, *month, recs))
		fmt.Printf("exported %d records to %s\n", len(recs), *out)
	case "scan:match":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		month := fs.String("month", cfg.DefaultMonth, "month collection")
		input := fs.String("input", "", "input file path")
		inType := fs.String("type", "text", "text|pdf|eml|html|xlsx")
		apply := fs.Bool("apply", false, "mark OK matches as registered")
		actor := fs.String("actor", "", "user id recorded in the activity log")
		_ = fs.Parse(args)
		if *input == "" {
			must(fmt.Errorf("--input is required"))
		}
		ext, err := pipeline.ReadInput(*inType, *input)
		must(err)
		text := strings.Join(append(ext.ScanTexts, ext.Text), "\n")
		if *apply {
			report, err := a.Scan.Apply(withActor(ctx, *actor), *month, text)
			must(err)
			printJSON(report)
			return
		}
		matches, err := a.Scan.Match(ctx, *month, text)
		must(err)
		printJSON(matches)
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", cfg.MailListenerProvider, "gmail|imap")
		label := fs.String("label", cfg.MailListenerLabel, "mailbox/label")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(args)
		fetch, err := a.Fetcher(*provider)
		must(err)
		result, err := fetch.FetchAndStore(ctx, *label, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d new=%d\n", *provider, result.Fetched, result.Stored, result.New)
	case "mail:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "", "only messages from gmail|imap")
		messageID := fs.String("messageId", "", "specific message-id")
		batch := fs.Int("batch", 20, "batch size")
		_ = fs.Parse(args)
		processor := a.Processor()
		if strings.TrimSpace(*messageID) != "" {
			res, err := processor.ProcessByProviderMessageID(ctx, *provider, *messageID)
			must(err)
			printJSON(res)
			return
		}
		results, err := processor.ProcessPending(ctx, *batch, *provider)
		must(err)
		fmt.Printf("processed pending messages=%d\n", len(results))
		for _, r := range results {
			fmt.Printf("  %s %s %s %s rows=%d\n", r.Hash[:12], r.Status, r.Operation, r.Month, r.Rows)
		}
	case "mail:listen":
		fetch, err := a.Fetcher(cfg.MailListenerProvider)
		must(err)
		s := listener.NewService(fetch, a.Processor(), a.Sales, cfg, a.Logger.Named("listener"))
		must(s.Run(ctx))
	case "carrier:sync":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		month := fs.String("month", cfg.DefaultMonth, "month collection")
		_ = fs.Parse(args)
		if strings.TrimSpace(*month) == "" {
			*month = sales.MonthKey(time.Now())
		}
		svc := carrier.NewSyncService(a.Sales, carrier.NewClient(cfg), a.Logger.Named("carrier"))
		res, err := svc.SyncMonth(ctx, *month)
		must(err)
		printJSON(res)
	case "serve":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		addr := fs.String("addr", cfg.HTTPAddr, "listen address")
		_ = fs.Parse(args)
		must(serve(ctx, a, *addr))
	default:
		usage()
		os.Exit(1)
	}
}

// runBatch reads rows from a local file and reconciles them with op. An empty
// op is taken from --op.
func runBatch(ctx context.Context, a *app.App, cmd string, args []string, op sales.Operation) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	month := fs.String("month", a.Cfg.DefaultMonth, "month collection, e.g. Septiembre_2025")
	input := fs.String("input", "", "input file path")
	inType := fs.String("type", "xlsx", "xlsx|html|eml")
	opName := fs.String("op", "", "update operation, e.g. updateGuides")
	actor := fs.String("actor", "", "user id recorded in the activity log")
	_ = fs.Parse(args)
	if *input == "" {
		must(fmt.Errorf("--input is required"))
	}
	if op == "" {
		parsed, err := sales.ParseOperation(*opName)
		must(err)
		op = parsed
	}

	ext, err := pipeline.ReadInput(*inType, *input)
	must(err)
	var rows []map[string]any
	for _, t := range ext.Tables {
		rows = append(rows, t.Rows...)
	}
	batch, dropped := sales.ProjectRows(rows)
	if dropped > 0 {
		a.Logger.Info("rows without NUMERO dropped", zap.Int("dropped", dropped))
	}
	out, err := a.Sales.Run(withActor(ctx, *actor), op, *month, batch)
	must(err)
	printJSON(out)
}

func serve(ctx context.Context, a *app.App, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewServer(a.Sales, a.Scan, a.Activity, a.Logger.Named("http")).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func withActor(ctx context.Context, uid string) context.Context {
	if strings.TrimSpace(uid) == "" {
		return ctx
	}
	return activity.WithActor(ctx, strings.TrimSpace(uid))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	must(enc.Encode(v))
}

func usage() {
	fmt.Println("usage: simventas <command>")
	fmt.Println("commands:")
	fmt.Println("  sales:add --month=Septiembre_2025 --input=ventas.xlsx [--type=xlsx|html|eml] [--actor=uid]")
	fmt.Println("  sales:import --month=... --input=base.xlsx")
	fmt.Println("  sales:update --op=updateGuides --month=... --input=guias.xlsx")
	fmt.Println("  sales:delete --month=... --numeros=3001234567,3109876543")
	fmt.Println("  months:list")
	fmt.Println("  template:xlsx --op=updatePortfolio --out=./out/plantilla.xlsx")
	fmt.Println("  export:xlsx --month=... --out=./out/Septiembre_2025.xlsx")
	fmt.Println("  scan:match --month=... --input=lectura.txt [--type=text|pdf|eml] [--apply]")
	fmt.Println("  mail:fetch --provider=gmail|imap --label=INBOX --max=50")
	fmt.Println("  mail:process [--provider=gmail|imap] [--messageId=...] [--batch=20]")
	fmt.Println("  mail:listen")
	fmt.Println("  carrier:sync --month=...")
	fmt.Println("  serve [--addr=:8080]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
