package app

import (
	"bytes"
	"cmp"
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mandelsoft/vfs/pkg/memoryfs"

	actx "go.hackfix.me/vestibule/app/context"
	"go.hackfix.me/vestibule/db"
	"go.hackfix.me/vestibule/db/models"
	"go.hackfix.me/vestibule/session"
)

// testSecret is a valid session secret used by every test app.
const testSecret = "a-test-secret-that-is-at-least-32-characters-long"

var timeNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func timeNowFn() time.Time {
	return timeNow
}

// testApp runs commands against an in-memory database and filesystem, and
// captures their output.
type testApp struct {
	*App
	stdout, stderr *output
	env            *mockEnv
}

func newTestApp(ctx context.Context, opts ...Option) (*testApp, error) {
	// Every app gets its own shared-cache in-memory database.
	dsn := "file:vestibule-" + rand.Text() + "?mode=memory&cache=shared"
	d, err := db.Open(ctx, dsn, timeNowFn)
	if err != nil {
		return nil, err
	}

	tapp := &testApp{
		stdout: &output{},
		stderr: &output{},
		env:    &mockEnv{env: map[string]string{"VESTIBULE_SECRETS": testSecret}},
	}
	tapp.App, err = New("vestibule", "/config.json", "/data", append([]Option{
		WithTimeNow(timeNowFn),
		WithEnv(tapp.env),
		WithDB(d),
		WithContext(ctx),
		WithFDs(strings.NewReader(""), tapp.stdout, tapp.stderr),
		WithFS(memoryfs.New()),
		WithLogger(false),
	}, opts...)...)
	if err != nil {
		return nil, err
	}

	return tapp, nil
}

// Run the app with the given arguments. Afterwards stdout and stderr hold only
// the output of this command, even if it failed.
func (ta *testApp) Run(args ...string) error {
	err := ta.App.Run(args)
	ta.stdout.flush()
	ta.stderr.flush()

	return err
}

type mockEnv struct {
	mx  sync.RWMutex
	env map[string]string
}

var _ actx.Environment = (*mockEnv)(nil)

func (me *mockEnv) Get(key string) string {
	me.mx.RLock()
	defer me.mx.RUnlock()
	return me.env[key]
}

func (me *mockEnv) Set(key, val string) error {
	me.mx.Lock()
	defer me.mx.Unlock()
	me.env[key] = val
	return nil
}

func (me *mockEnv) All() map[string]string {
	me.mx.RLock()
	defer me.mx.RUnlock()
	return maps.Clone(me.env)
}

func (me *mockEnv) Delete(key string) {
	me.mx.Lock()
	defer me.mx.Unlock()
	delete(me.env, key)
}

// output is a concurrency-safe writer for a command stream. Writes go to the
// running command's buffer, which flush publishes for String. Watchers added
// with waitFor see every write as it happens.
type output struct {
	mx       sync.Mutex
	running  bytes.Buffer
	last     string
	watchers []*watcher
}

type watcher struct {
	rx       *regexp.Regexp
	matchIdx int
	ch       chan<- string
}

func (o *output) Write(p []byte) (int, error) {
	o.mx.Lock()
	defer o.mx.Unlock()

	remaining := o.watchers[:0]
	for _, w := range o.watchers {
		m := w.rx.FindSubmatch(p)
		if m == nil || len(m) <= w.matchIdx {
			remaining = append(remaining, w)
			continue
		}
		select {
		case w.ch <- string(m[w.matchIdx]):
		default:
		}
	}
	o.watchers = remaining

	return o.running.Write(p)
}

// waitFor sends the submatch at matchIdx of the first write that matches rxPat
// to ch. The send never blocks, so ch should be buffered.
func (o *output) waitFor(rxPat string, matchIdx int, ch chan<- string) {
	o.mx.Lock()
	defer o.mx.Unlock()
	o.watchers = append(o.watchers, &watcher{
		rx: regexp.MustCompile(rxPat), matchIdx: matchIdx, ch: ch,
	})
}

func (o *output) flush() {
	o.mx.Lock()
	defer o.mx.Unlock()
	o.last = o.running.String()
	o.running.Reset()
}

// String returns the output of the last finished command.
func (o *output) String() string {
	o.mx.Lock()
	defer o.mx.Unlock()
	return o.last
}

// newTestContext returns a context that times out after timeout, and an
// assertion handler that cancels the context and stops the test when an
// assertion fails, so that goroutines waiting on the context exit early.
func newTestContext(t *testing.T, timeout time.Duration) (
	ctx context.Context, cancelCtx func(), assertHandler func(bool),
) {
	ctx, cancelCtx = context.WithTimeout(t.Context(), timeout)
	assertHandler = func(success bool) {
		if !success {
			cancelCtx()
			t.FailNow()
		}
	}

	return ctx, cancelCtx, assertHandler
}

// initTestDB creates the database schema and adds users with the given names.
// It returns the access token of each user.
func initTestDB(appCtx *actx.Context, names ...string) (map[string]string, error) {
	if err := appCtx.DB.Init("test", slog.New(slog.DiscardHandler)); err != nil {
		return nil, err
	}

	dbCtx := appCtx.DB.NewContext()
	tokens := make(map[string]string, len(names))
	for _, name := range names {
		user := &models.User{Name: name}
		if err := user.Save(dbCtx, appCtx.DB, false); err != nil {
			return nil, err
		}
		tokens[name] = user.AccessToken
	}

	return tokens, nil
}

func newTestVerifier(cookieName string) (*session.Verifier, error) {
	return session.NewVerifier([]string{testSecret},
		session.WithCookieName(cookieName), session.WithTimeNow(timeNowFn))
}

// memPg is an in-memory users table that answers the statements of the pg
// package. It stands in for a PostgreSQL pool, but has no transaction
// isolation: writes are visible immediately, and rollbacks are only counted.
type memPg struct {
	mx        sync.Mutex
	users     []*models.User
	lastID    uint64
	commits   int
	rollbacks int
}

func (m *memPg) index(match func(*models.User) bool) int {
	return slices.IndexFunc(m.users, match)
}

func (m *memPg) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	m.mx.Lock()
	defer m.mx.Unlock()

	switch {
	case strings.HasPrefix(sql, "INSERT INTO users"):
		name := args[3].(string)
		if m.index(func(u *models.User) bool { return u.Name == name }) >= 0 {
			return memRow{err: &pgconn.PgError{Code: "23505"}}
		}
		m.lastID++
		m.users = append(m.users, &models.User{
			ID: m.lastID, UUID: args[0].(string), CreatedAt: args[1].(time.Time),
			UpdatedAt: args[2].(time.Time), Name: name, AccessToken: args[4].(string),
		})
		return memRow{vals: []any{m.lastID}}
	case strings.HasPrefix(sql, "DELETE FROM users"):
		i := m.index(func(u *models.User) bool { return u.Name == args[0] })
		if i < 0 {
			return memRow{err: pgx.ErrNoRows}
		}
		u := m.users[i]
		m.users = slices.Delete(m.users, i, i+1)
		return userRow(u)
	case strings.HasPrefix(sql, "UPDATE users SET access_token"):
		i := m.index(func(u *models.User) bool { return u.ID == args[2] })
		if i < 0 {
			return memRow{err: pgx.ErrNoRows}
		}
		m.users[i].AccessToken = args[0].(string)
		m.users[i].UpdatedAt = args[1].(time.Time)
		return memRow{vals: []any{m.users[i].ID}}
	case strings.Contains(sql, "WHERE access_token"):
		i := m.index(func(u *models.User) bool { return u.AccessToken == args[0] })
		if i < 0 {
			return memRow{err: pgx.ErrNoRows}
		}
		return userRow(m.users[i])
	case strings.Contains(sql, "WHERE name"):
		i := m.index(func(u *models.User) bool { return u.Name == args[0] })
		if i < 0 {
			return memRow{err: pgx.ErrNoRows}
		}
		return userRow(m.users[i])
	}

	return memRow{err: fmt.Errorf("unexpected query: %s", sql)}
}

func (m *memPg) Query(context.Context, string, ...any) (pgx.Rows, error) {
	m.mx.Lock()
	defer m.mx.Unlock()

	sorted := slices.SortedFunc(slices.Values(m.users), func(a, b *models.User) int {
		return cmp.Compare(a.Name, b.Name)
	})
	rows := &memRows{}
	for _, u := range sorted {
		rows.rows = append(rows.rows, userRow(u))
	}

	return rows, nil
}

func (m *memPg) Begin(context.Context) (pgx.Tx, error) { return &memTx{db: m}, nil }
func (m *memPg) Ping(context.Context) error             { return nil }
func (m *memPg) Close()                                 {}

func (m *memPg) counts() (users, commits, rollbacks int) {
	m.mx.Lock()
	defer m.mx.Unlock()
	return len(m.users), m.commits, m.rollbacks
}

type memTx struct {
	pgx.Tx
	db   *memPg
	done bool
}

func (tx *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return tx.db.QueryRow(ctx, sql, args...)
}

func (tx *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return tx.db.Query(ctx, sql, args...)
}

func (tx *memTx) Commit(context.Context) error {
	tx.db.mx.Lock()
	defer tx.db.mx.Unlock()
	tx.done = true
	tx.db.commits++
	return nil
}

func (tx *memTx) Rollback(context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.db.mx.Lock()
	defer tx.db.mx.Unlock()
	tx.done = true
	tx.db.rollbacks++
	return nil
}

type memRow struct {
	vals []any
	err  error
}

func userRow(u *models.User) memRow {
	return memRow{vals: []any{u.ID, u.UUID, u.CreatedAt, u.UpdatedAt, u.Name, u.AccessToken}}
}

func (r memRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *uint64:
			*p = r.vals[i].(uint64)
		case *string:
			*p = r.vals[i].(string)
		case *time.Time:
			*p = r.vals[i].(time.Time)
		default:
			return fmt.Errorf("unsupported scan destination %T", d)
		}
	}
	return nil
}

type memRows struct {
	pgx.Rows
	rows []memRow
	i    int
}

func (r *memRows) Next() bool {
	if r.i == len(r.rows) {
		return false
	}
	r.i++
	return true
}

func (r *memRows) Scan(dest ...any) error { return r.rows[r.i-1].Scan(dest...) }
func (r *memRows) Err() error             { return nil }
func (r *memRows) Close()                 {}
