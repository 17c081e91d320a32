package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/loandesk/internal/auth"
	"github.com/dmitrijs2005/loandesk/internal/client/config"
	"github.com/dmitrijs2005/loandesk/internal/common"
	"github.com/dmitrijs2005/loandesk/internal/cryptox"
	"github.com/dmitrijs2005/loandesk/internal/logging"
	"github.com/dmitrijs2005/loandesk/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ------------ helpers ------------

func readerFromLines(lines ...string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.AuthPollInterval = 0

	var out bytes.Buffer
	a := newApp(cfg, logging.Discard(), storage.NewObservable(storage.NewMemoryStore()),
		func() error { return nil }, readerFromLines(), &out,
		auth.WithHasher(cryptox.NewHasher(cryptox.Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16})))
	return a, &out
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}

func (a *App) feed(lines ...string) {
	a.reader = readerFromLines(lines...)
}

func signedIn(t *testing.T, a *App) {
	t.Helper()
	ctx := context.Background()
	stubPassword(t, "s3cret")

	a.feed("reviewer@example.com")
	require.NoError(t, a.SignUp(ctx))
	a.feed("reviewer@example.com")
	require.NoError(t, a.Login(ctx))
	require.True(t, a.isLoggedIn(ctx))
}

func applyAs(t *testing.T, a *App, name, amount string) {
	t.Helper()
	a.feed(name, "12345678", "applicant@example.com", "+254700000000", "bridging", "land-title", amount, "")
	require.NoError(t, a.Apply(context.Background()))
}

// ------------ tests ------------

func TestLoginLogoutSession(t *testing.T) {
	ctx := context.Background()
	a, out := newTestApp(t)

	require.NoError(t, a.Session(ctx))
	assert.Contains(t, out.String(), "Not signed in")
	assert.Empty(t, a.status())

	signedIn(t, a)
	assert.Contains(t, out.String(), "Account created for reviewer@example.com")
	assert.Contains(t, out.String(), "Login successful")
	assert.Equal(t, "(reviewer@example.com)", a.status())

	out.Reset()
	require.NoError(t, a.Session(ctx))
	assert.Contains(t, out.String(), "Signed in as reviewer@example.com")

	require.NoError(t, a.Logout(ctx))
	assert.False(t, a.isLoggedIn(ctx))
}

func TestLogin_WrongPassword(t *testing.T) {
	ctx := context.Background()
	a, out := newTestApp(t)
	signedIn(t, a)
	require.NoError(t, a.Logout(ctx))

	stubPassword(t, "nope")
	a.feed("reviewer@example.com")
	require.NoError(t, a.Login(ctx))
	assert.Contains(t, out.String(), "invalid email or password")
	assert.False(t, a.isLoggedIn(ctx))
}

func TestSignUp_Duplicate(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp(t)
	signedIn(t, a)

	a.feed("reviewer@example.com")
	assert.ErrorIs(t, a.SignUp(ctx), common.ErrDuplicateUser)
}

func TestApply_ListShowStatusDelete(t *testing.T) {
	ctx := context.Background()
	a, out := newTestApp(t)

	applyAs(t, a, "Jane Wanjiku", "KES 150,000")
	assert.Contains(t, out.String(), "Application APP-001 received for KES 150,000")
	assert.Contains(t, out.String(), "Applicant notified at applicant@example.com")
	applyAs(t, a, "Otieno Kamau", "80000")

	signedIn(t, a)

	out.Reset()
	require.NoError(t, a.List(ctx, ""))
	assert.Contains(t, out.String(), "APP-001")
	assert.Contains(t, out.String(), "APP-002")
	assert.Contains(t, out.String(), "Bridging Loan")

	out.Reset()
	require.NoError(t, a.Search(ctx, "otieno"))
	assert.NotContains(t, out.String(), "APP-001")
	assert.Contains(t, out.String(), "APP-002")

	out.Reset()
	require.NoError(t, a.SetStatus(ctx, "APP-001", "approved"))
	assert.Contains(t, out.String(), "APP-001 is now approved")

	out.Reset()
	require.NoError(t, a.List(ctx, "approved"))
	assert.Contains(t, out.String(), "APP-001")
	assert.NotContains(t, out.String(), "APP-002")

	assert.Error(t, a.List(ctx, "lost"))
	assert.Error(t, a.SetStatus(ctx, "APP-001", "maybe"))
	assert.ErrorIs(t, a.SetStatus(ctx, "APP-404", "approved"), common.ErrNotFound)

	out.Reset()
	require.NoError(t, a.Show(ctx, "APP-001"))
	assert.Contains(t, out.String(), "Jane Wanjiku")
	assert.Contains(t, out.String(), "approved")
	assert.ErrorIs(t, a.Show(ctx, "APP-404"), common.ErrNotFound)

	out.Reset()
	require.NoError(t, a.Stats(ctx))
	assert.Contains(t, out.String(), "Total: 2  Pending: 1  Approved: 1  Rejected: 0")
	assert.Contains(t, out.String(), "Total amount: KES 230,000  Average: KES 115,000")

	require.NoError(t, a.Delete(ctx, "APP-002"))
	assert.ErrorIs(t, a.Delete(ctx, "APP-002"), common.ErrNotFound)

	out.Reset()
	require.NoError(t, a.Emails(ctx))
	assert.Contains(t, out.String(), "Application Received - APP-001")
	assert.Contains(t, out.String(), "Application APP-001 - Approved")
}

func TestApply_MissingFields(t *testing.T) {
	a, out := newTestApp(t)

	a.feed("", "", "", "", "bridging", "land-title", "1000", "")
	require.NoError(t, a.Apply(context.Background()))
	assert.Contains(t, out.String(), "Please fill in: name")
}

func TestApply_BadAmount(t *testing.T) {
	a, _ := newTestApp(t)

	a.feed("Jane", "1", "j@example.com", "0700", "bridging", "land-title", "lots")
	assert.Error(t, a.Apply(context.Background()))
}

func TestCalc(t *testing.T) {
	ctx := context.Background()
	a, out := newTestApp(t)

	a.feed("", "", "100000")
	require.NoError(t, a.Calc(ctx))
	assert.Contains(t, out.String(), "60% over loan period")
	assert.Contains(t, out.String(), "Total repayment: KES 160,000")
	assert.Contains(t, out.String(), "KES 16,000 over 10 months")

	out.Reset()
	a.feed("short-term", "2", "10,000")
	require.NoError(t, a.Calc(ctx))
	assert.Contains(t, out.String(), "Total repayment: KES 16,000")
	assert.Contains(t, out.String(), "KES 8,000 over 2 months")

	a.feed("short-term", "1", "60000")
	assert.Error(t, a.Calc(ctx))

	a.feed("logbook")
	assert.Error(t, a.Calc(ctx))

	a.feed("bridging", "3")
	assert.Error(t, a.Calc(ctx))
}

func TestEmails_Empty(t *testing.T) {
	a, out := newTestApp(t)
	require.NoError(t, a.Emails(context.Background()))
	assert.Contains(t, out.String(), "No emails sent")
}

func TestPrintAuthEvent(t *testing.T) {
	ctx := context.Background()
	a, out := newTestApp(t)

	a.printAuthEvent("SIGNED_OUT", nil)
	assert.Contains(t, out.String(), "[auth] SIGNED_OUT\n")

	signedIn(t, a)
	s, err := a.auth.GetSession(ctx)
	require.NoError(t, err)
	a.printAuthEvent("SIGNED_IN", s)
	assert.Contains(t, out.String(), "[auth] SIGNED_IN reviewer@example.com")
}

func TestNewApp_CreatesDataDir(t *testing.T) {
	orig, err := os.Getwd()
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DataDir = "data"

	a, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.close() })

	_, err = os.Stat(filepath.Join(dir, "data", "loandesk.db"))
	assert.NoError(t, err)
}

func TestRun_ExitsOnEOF(t *testing.T) {
	captureOutput(t)
	a, out := newTestApp(t)
	closed := false
	a.close = func() error { closed = true; return nil }
	a.feed("help", "exit")

	a.Run(context.Background())

	assert.True(t, closed)
	assert.Contains(t, out.String(), "Welcome to LoanDesk CLI")
	assert.Contains(t, out.String(), "[auth] INITIAL_SESSION")
}
