// Command mys automates daily actions for bound miHoYo community accounts:
// QR login, game sign-in, community missions and resource notices.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/and161185/mys-helper/internal/config"
	"github.com/and161185/mys-helper/internal/login"
	"github.com/and161185/mys-helper/internal/migrate"
	"github.com/and161185/mys-helper/internal/model"
	"github.com/and161185/mys-helper/internal/notify"
	"github.com/and161185/mys-helper/internal/platform"
	"github.com/and161185/mys-helper/internal/storage"
	"github.com/and161185/mys-helper/internal/storage/postgres"
	"github.com/and161185/mys-helper/internal/task"
	"github.com/and161185/mys-helper/internal/tasks"
	"github.com/and161185/mys-helper/internal/verify"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

const usage = `usage: mys [flags] <command>

commands:
  login     bind a new account via QR scan
  sign      run the daily game sign-in for enabled accounts
  mission   run the community missions for enabled accounts
  note      check real-time notes against the configured thresholds
  run       sign + mission + note in sequence
`

func main() {
	cfgPath := flag.String("config", "config.yaml", "config file path")
	dev := flag.Bool("dev", false, "verbose development logging")
	flag.Parse()

	// .env is optional; real environment wins over it.
	_ = godotenv.Load()

	logger := newLogger(*dev)
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
	)

	if flag.NArg() < 1 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	applyEnv(&cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("open account store", zap.Error(err))
	}
	defer closeStore()

	api := platform.New(cfg, logger)
	resolver := verify.NewResolver(cfg, logger)
	executor := verify.NewExecutor(resolver, cfg.Preference.Sleep(), logger)
	svc := tasks.New(api, executor, store, logger)
	runner := task.NewRunner(cfg.Preference.Sleep(), logger)

	var notifier notify.Notifier = notify.Nop{}
	if cfg.WebhookURL != "" {
		notifier = notify.NewWebhook(cfg.WebhookURL, logger)
	}

	app := &app{
		cfg:      cfg,
		store:    store,
		api:      api,
		svc:      svc,
		runner:   runner,
		notifier: notifier,
		log:      logger,
	}

	switch cmd := flag.Arg(0); cmd {
	case "login":
		err = app.login(ctx)
	case "sign":
		err = app.task(ctx, "game sign-in", selectSign, app.svc.GameSign)
	case "mission":
		err = app.task(ctx, "community missions", selectMission, app.svc.Mission)
	case "note":
		err = app.task(ctx, "note check", selectNote, app.svc.NoteCheck)
	case "run":
		err = app.runAll(ctx)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal("command failed", zap.Error(err))
	}
}

func newLogger(dev bool) *zap.Logger {
	if dev {
		l, _ := zap.NewDevelopment()
		return l
	}
	l, _ := zap.NewProduction()
	return l
}

// applyEnv overlays deployment-specific settings from the environment.
func applyEnv(cfg *config.Config) {
	if v := os.Getenv("MYS_DATA_FILE"); v != "" {
		cfg.DataFile = v
	}
	if v := os.Getenv("MYS_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("MYS_WEBHOOK_URL"); v != "" {
		cfg.WebhookURL = v
	}
}

// openStore picks the Postgres store when a DSN is configured, the JSON
// file store otherwise.
func openStore(ctx context.Context, cfg config.Config) (storage.Store, func(), error) {
	if cfg.PostgresDSN == "" {
		fs, err := storage.NewFileStore(cfg.DataFile)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	}
	if err := migrate.Up(ctx, cfg.PostgresDSN); err != nil {
		return nil, nil, fmt.Errorf("migrate up: %w", err)
	}
	db, err := postgres.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewAccountRepo(db), db.Close, nil
}

// app wires the long-lived collaborators for command handlers.
type app struct {
	cfg      config.Config
	store    storage.Store
	api      *platform.Client
	svc      *tasks.Service
	runner   *task.Runner
	notifier notify.Notifier
	log      *zap.Logger
}

// login binds a new account: prints the scannable URL and runs the
// credential exchange chain.
func (a *app) login(ctx context.Context) error {
	chain := login.NewChain(a.api, a.store, a.cfg.Preference, a.log)
	chain.OnQR = func(qrURL string) {
		fmt.Println("scan with the app to log in:")
		fmt.Println(qrURL)
		if err := a.notifier.Notify(ctx, "login qrcode", qrURL); err != nil {
			a.log.Warn("notify login url", zap.Error(err))
		}
	}
	acct, failure := chain.Bootstrap(ctx)
	if failure != nil {
		return fmt.Errorf("%s: %s", failure.Kind, failure.Message)
	}
	fmt.Printf("account %s bound\n", acct.UID)
	return nil
}

// Account selectors per task.
func selectSign(a *model.Account) bool    { return a.EnableGameSign }
func selectMission(a *model.Account) bool { return a.EnableMission }
func selectNote(a *model.Account) bool    { return a.EnableNotice }

// task loads the enabled accounts, runs one task over them, prints the
// report and pushes it through the notifier.
func (a *app) task(ctx context.Context, name string, selected func(*model.Account) bool, fn task.Fn) error {
	accounts, err := a.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}
	var picked []*model.Account
	for _, acct := range accounts {
		if selected(acct) {
			picked = append(picked, acct)
		}
	}

	res := a.runner.Run(ctx, name, picked, fn)
	fmt.Printf("%s: %s\n%s\n", res.Name, res.Status(), res.Message())
	if err := notify.NotifyResult(ctx, a.notifier, res); err != nil {
		a.log.Warn("notify task result", zap.Error(err))
	}
	return nil
}

// runAll executes every task in sequence; one failing task does not stop
// the rest.
func (a *app) runAll(ctx context.Context) error {
	type job struct {
		name     string
		selected func(*model.Account) bool
		fn       task.Fn
	}
	jobs := []job{
		{"game sign-in", selectSign, a.svc.GameSign},
		{"community missions", selectMission, a.svc.Mission},
		{"note check", selectNote, a.svc.NoteCheck},
	}
	for _, j := range jobs {
		if err := a.task(ctx, j.name, j.selected, j.fn); err != nil {
			a.log.Error("task aborted", zap.String("task", j.name), zap.Error(err))
		}
	}
	return nil
}
