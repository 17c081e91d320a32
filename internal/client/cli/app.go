package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/loandesk/internal/applications"
	"github.com/dmitrijs2005/loandesk/internal/auth"
	"github.com/dmitrijs2005/loandesk/internal/client/config"
	"github.com/dmitrijs2005/loandesk/internal/filex"
	"github.com/dmitrijs2005/loandesk/internal/loans"
	"github.com/dmitrijs2005/loandesk/internal/logging"
	"github.com/dmitrijs2005/loandesk/internal/models"
	"github.com/dmitrijs2005/loandesk/internal/notifier"
	"github.com/dmitrijs2005/loandesk/internal/storage"
)

type App struct {
	config *config.Config
	logger logging.Logger
	auth   *auth.Service
	apps   *applications.Store
	desk   *loans.Desk
	mail   *notifier.Notifier
	reader *bufio.Reader

	outMu sync.Mutex
	out   io.Writer

	close func() error
}

// NewApp opens the local store inside the data directory and builds the
// services on top of it.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogFormat, os.Stderr)

	dataDir, err := filex.EnsureDataDir(c.DataDir)
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	store, closeStore, err := storage.Open(ctx, c.StorageOptions(dataDir))
	if err != nil {
		logger.Error(ctx, "error initializing storage", "error", err)
		return nil, err
	}

	return newApp(c, logger, store, closeStore, bufio.NewReader(os.Stdin), os.Stdout), nil
}

func newApp(c *config.Config, logger logging.Logger, store storage.Store, closeStore func() error,
	in *bufio.Reader, out io.Writer, authOpts ...auth.Option) *App {
	mail := notifier.New(store, notifier.WithLogger(logger))
	authSvc := auth.NewService(store, append([]auth.Option{
		auth.WithMailer(mail),
		auth.WithPollInterval(c.AuthPollInterval),
		auth.WithLogger(logger),
	}, authOpts...)...)
	apps := applications.NewStore(store, applications.WithLogger(logger))

	return &App{
		config: c,
		logger: logger,
		auth:   authSvc,
		apps:   apps,
		desk:   loans.NewDesk(apps, mail, logger),
		mail:   mail,
		reader: in,
		out:    out,
		close:  closeStore,
	}
}

// Run prints auth state changes in the background and blocks in the REPL
// until the user exits.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.close(); err != nil {
			a.logger.Error(ctx, "close storage", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sub := a.auth.OnAuthStateChange(ctx, a.printAuthEvent)
	defer func() {
		sub.Unsubscribe()
		<-sub.Done()
	}()

	a.printf("Welcome to LoanDesk CLI (type 'help' for commands)\n")
	runREPL(ctx, a, a.status, bufio.NewScanner(a.reader))
}

func (a *App) printAuthEvent(event models.AuthEvent, session *models.Session) {
	if view := a.auth.View(context.Background(), session); view != nil {
		a.printf("[auth] %s %s\n", event, view.User.Email)
		return
	}
	a.printf("[auth] %s\n", event)
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	s, err := a.auth.GetSession(ctx)
	return err == nil && s != nil
}

// status is the prompt suffix: the signed-in email, if any.
func (a *App) status() string {
	ctx := context.Background()
	s, err := a.auth.GetSession(ctx)
	if err != nil || s == nil {
		return ""
	}
	if view := a.auth.View(ctx, s); view != nil {
		return "(" + view.User.Email + ")"
	}
	return ""
}

func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}
