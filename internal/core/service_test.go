package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/sheets/internal/grid"
)

type memStore struct {
	mu          sync.Mutex
	states      map[string]WorkbookState
	saves       int
	fail        error
	purgeBefore time.Time
}

func newMemStore() *memStore {
	return &memStore{states: make(map[string]WorkbookState)}
}

func (m *memStore) Save(_ context.Context, id string, state WorkbookState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.states[id] = state
	m.saves++
	return nil
}

func (m *memStore) Load(_ context.Context, id string) (WorkbookState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[id]
	if !ok {
		return WorkbookState{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return st, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.states[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.states, id)
	return nil
}

func (m *memStore) Purge(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purgeBefore = before
	return 0, nil
}

// lineImporter reads one sheet where each line is a row of
// comma-separated values.
type lineImporter struct {
	delay time.Duration
}

func (l lineImporter) Import(filename string, r io.Reader) ([]grid.SheetData, error) {
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	if !strings.HasSuffix(filename, ".txt") {
		return nil, errors.New("unsupported format")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, nil
	}
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		rows = append(rows, strings.Split(line, ","))
	}
	return []grid.SheetData{{Name: strings.TrimSuffix(filename, ".txt"), Rows: rows}}, nil
}

type lineExporter struct{}

func (lineExporter) MultiSheet(format string) bool { return format == "all" }

func (lineExporter) Export(w io.Writer, format string, sheets []grid.SheetData) error {
	if format != "all" && format != "txt" {
		return errors.New("unsupported format")
	}
	for _, s := range sheets {
		fmt.Fprintf(w, "# %s\n", s.Name)
		for _, row := range s.Rows {
			fmt.Fprintln(w, strings.Join(row, ","))
		}
	}
	return nil
}

func newTestService(store SessionStore, cfg ServiceConfig) *Service {
	return NewService(store, lineImporter{}, lineExporter{}, cfg)
}

func TestService_CreateAndSnapshot(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil, ServiceConfig{})

	id, snap, err := svc.CreateSession(ctx)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if id == "" || len(snap.Sheets) != 1 || !snap.Editable {
		t.Fatalf("unexpected initial session %q %+v", id, snap)
	}

	got, err := svc.Snapshot(ctx, id)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if got.ActiveSheet().Name != DefaultSheetName {
		t.Errorf("active sheet = %q", got.ActiveSheet().Name)
	}

	if _, err := svc.Snapshot(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Snapshot(missing) err = %v, want ErrSessionNotFound", err)
	}
	if svc.SessionCount() != 1 {
		t.Errorf("SessionCount = %d, want 1", svc.SessionCount())
	}
}

func TestService_MaxSessions(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil, ServiceConfig{MaxSessions: 1})

	if _, _, err := svc.CreateSession(ctx); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.CreateSession(ctx); !errors.Is(err, ErrTooManySessions) {
		t.Errorf("second CreateSession err = %v, want ErrTooManySessions", err)
	}
}

func TestService_ApplyReadOnly(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil, ServiceConfig{})
	id, _, _ := svc.CreateSession(ctx)

	if _, err := svc.Apply(ctx, id, Action{Kind: ActionSetEditable, Editable: false}); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Apply(ctx, id, Action{Kind: ActionSetCell, Row: 0, Col: 0, Value: "x"})
	if !errors.Is(err, ErrReadOnly) {
		t.Fatalf("set_cell in read-only mode err = %v, want ErrReadOnly", err)
	}

	// Structural operations stay available while read-only.
	if _, err := svc.Apply(ctx, id, Action{Kind: ActionSelectRow, Row: 0}); err != nil {
		t.Fatal(err)
	}
	snap, err := svc.Apply(ctx, id, Action{Kind: ActionInsertRowBelow})
	if err != nil {
		t.Fatalf("insert_row_below: %v", err)
	}
	if got := snap.ActiveSheet().RowCount; got != DefaultRows+1 {
		t.Errorf("RowCount = %d, want %d", got, DefaultRows+1)
	}

	snap, err = svc.Apply(ctx, id, Action{Kind: ActionToggleEdit})
	if err != nil || !snap.Editable {
		t.Fatalf("toggle_edit: editable=%v err=%v", snap.Editable, err)
	}
	snap, err = svc.Apply(ctx, id, Action{Kind: ActionSetCell, Row: 0, Col: 0, Value: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if snap.ActiveSheet().Rows[0][0] != "x" {
		t.Errorf("cell = %q, want x", snap.ActiveSheet().Rows[0][0])
	}
}

func TestService_ApplyAudits(t *testing.T) {
	ctx := ContextWithUserAgent(context.Background(), "test-agent")
	svc := newTestService(nil, ServiceConfig{})
	id, _, _ := svc.CreateSession(ctx)

	_, _ = svc.Apply(ctx, id, Action{Kind: ActionSetCell, Value: "v"})
	_, _ = svc.Apply(ctx, id, Action{Kind: ActionSelectRow, Row: 2})
	_, _ = svc.Apply(ctx, id, Action{Kind: ActionDeleteRow})

	entries, err := svc.Audit(ctx, id, 10)
	if err != nil {
		t.Fatal(err)
	}
	var actions []AuditAction
	for _, e := range entries {
		actions = append(actions, e.Action)
	}
	want := []AuditAction{AuditStructure, AuditCellEdit, AuditSessionCreate}
	if fmt.Sprint(actions) != fmt.Sprint(want) {
		t.Errorf("audit actions = %v, want %v", actions, want)
	}
	if entries[0].UserAgent != "test-agent" {
		t.Errorf("UserAgent = %q", entries[0].UserAgent)
	}
}

func TestService_CellEditAuditsOldValue(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil, ServiceConfig{})
	id, _, _ := svc.CreateSession(ctx)

	_, _ = svc.Apply(ctx, id, Action{Kind: ActionSetCell, Row: 1, Col: 2, Value: "first"})
	_, _ = svc.Apply(ctx, id, Action{Kind: ActionSetCell, Row: 1, Col: 2, Value: "second"})

	entries, err := svc.Audit(ctx, id, 2)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		entry    AuditEntry
		old, new string
	}{
		{entries[0], "first", "second"},
		{entries[1], "", "first"},
	}
	for i, tt := range tests {
		if tt.entry.OldValue != tt.old || tt.entry.NewValue != tt.new || tt.entry.Sheet != "Sheet1" {
			t.Errorf("entry %d = %+v, want %q -> %q on Sheet1", i, tt.entry, tt.old, tt.new)
		}
	}
}

func TestService_Import(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil, ServiceConfig{})
	id, _, _ := svc.CreateSession(ctx)

	snap, err := svc.Import(ctx, id, "people.txt", []byte("a,b,c\nd\n"))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	sheet := snap.ActiveSheet()
	if sheet.Name != "people" || sheet.RowCount != 2 || sheet.ColCount != 3 {
		t.Errorf("imported sheet = %+v", sheet)
	}
	if sheet.Rows[1][2] != "" {
		t.Errorf("ragged row not padded: %v", sheet.Rows[1])
	}

	// Failed imports leave the workbook as it was.
	for _, tc := range []struct {
		file string
		data string
		want error
	}{
		{"empty.txt", "", ErrNoSheets},
		{"doc.pdf", "x", nil},
	} {
		_, err := svc.Import(ctx, id, tc.file, []byte(tc.data))
		if err == nil {
			t.Errorf("Import(%s) succeeded", tc.file)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Errorf("Import(%s) err = %v, want %v", tc.file, err, tc.want)
		}
	}
	after, _ := svc.Snapshot(ctx, id)
	if after.ActiveSheet().Name != "people" {
		t.Errorf("failed import replaced workbook: %q", after.ActiveSheet().Name)
	}

	if _, err := svc.Import(ctx, "nope", "a.txt", []byte("x")); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Import into missing session err = %v", err)
	}
}

func TestService_ImportTimeout(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil, lineImporter{delay: 200 * time.Millisecond}, lineExporter{}, ServiceConfig{
		ImportTimeout: 20 * time.Millisecond,
	})
	id, _, _ := svc.CreateSession(ctx)

	_, err := svc.Import(ctx, id, "slow.txt", []byte("x"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Import err = %v, want DeadlineExceeded", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := svc.WaitForImports(waitCtx); err != nil {
		t.Errorf("WaitForImports: %v", err)
	}
	if got := svc.ImportStatus().Active; got != 0 {
		t.Errorf("active imports = %d after drain", got)
	}
}

func TestService_Export(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil, ServiceConfig{})
	id, _, _ := svc.CreateSession(ctx)
	_, _ = svc.Import(ctx, id, "first.txt", []byte("1,2"))
	_, _ = svc.Apply(ctx, id, Action{Kind: ActionAddSheet})

	var buf bytes.Buffer
	name, err := svc.Export(ctx, id, "all", &buf)
	if err != nil {
		t.Fatal(err)
	}
	if name != "Workbook.all" {
		t.Errorf("multi-sheet filename = %q", name)
	}
	if !strings.Contains(buf.String(), "# first") || !strings.Contains(buf.String(), "# Sheet2") {
		t.Errorf("multi-sheet export missing sheets:\n%s", buf.String())
	}

	buf.Reset()
	name, err = svc.Export(ctx, id, ".TXT", &buf)
	if err != nil {
		t.Fatal(err)
	}
	if name != "Sheet2.txt" {
		t.Errorf("single-sheet filename = %q, want active sheet name", name)
	}
	if strings.Contains(buf.String(), "# first") {
		t.Error("single-sheet export included an inactive sheet")
	}

	if _, err := svc.Export(ctx, id, "pdf", io.Discard); err == nil {
		t.Error("Export(pdf) should fail")
	}
}

func TestService_SweepSavesAndRestores(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store, ServiceConfig{IdleTimeout: time.Minute})

	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	id, _, _ := svc.CreateSession(ctx)
	_, _ = svc.Apply(ctx, id, Action{Kind: ActionSetCell, Value: "kept"})
	_, _ = svc.Apply(ctx, id, Action{Kind: ActionSelectRow, Row: 0})

	clock = clock.Add(30 * time.Second)
	if n := svc.Sweep(ctx); n != 0 {
		t.Fatalf("Sweep evicted %d fresh sessions", n)
	}

	clock = clock.Add(2 * time.Minute)
	if n := svc.Sweep(ctx); n != 1 {
		t.Fatalf("Sweep evicted %d sessions, want 1", n)
	}
	if svc.SessionCount() != 0 {
		t.Errorf("SessionCount = %d after sweep", svc.SessionCount())
	}

	snap, err := svc.Snapshot(ctx, id)
	if err != nil {
		t.Fatalf("Snapshot after eviction: %v", err)
	}
	if snap.ActiveSheet().Rows[0][0] != "kept" {
		t.Errorf("restored cell = %q, want kept", snap.ActiveSheet().Rows[0][0])
	}
	if snap.Selection.Kind != SelectNone {
		t.Error("selection should not survive eviction")
	}
}

func TestService_SweepWithoutStoreDrops(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil, ServiceConfig{IdleTimeout: time.Minute})
	clock := time.Now()
	svc.now = func() time.Time { return clock }

	id, _, _ := svc.CreateSession(ctx)
	clock = clock.Add(time.Hour)
	svc.Sweep(ctx)

	if _, err := svc.Snapshot(ctx, id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Snapshot after drop err = %v, want ErrSessionNotFound", err)
	}
}

func TestService_SweepWithoutStoreForgetsAudit(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil, ServiceConfig{IdleTimeout: time.Minute})
	clock := time.Now()
	svc.now = func() time.Time { return clock }

	for i := 0; i < 100; i++ {
		if _, _, err := svc.CreateSession(ctx); err != nil {
			t.Fatal(err)
		}
	}
	clock = clock.Add(time.Hour)

	if n := svc.Sweep(ctx); n != 100 {
		t.Fatalf("Sweep evicted %d sessions, want 100", n)
	}
	if n := svc.audit.SessionCount(); n != 0 {
		t.Errorf("audit keeps %d dropped sessions, want 0", n)
	}
}

func TestService_RunSweepPrunesPurgedAudit(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store, ServiceConfig{IdleTimeout: time.Minute, StoreRetention: 24 * time.Hour})
	clock := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	stale, _, _ := svc.CreateSession(ctx)
	clock = clock.Add(time.Hour)
	svc.runSweep(ctx)
	if len(svc.audit.Recent(stale, 0)) == 0 {
		t.Fatal("evicted session with a store should keep its audit trail")
	}

	clock = clock.Add(48 * time.Hour)
	fresh, _, _ := svc.CreateSession(ctx)
	svc.runSweep(ctx)

	if got := svc.audit.Recent(stale, 0); len(got) != 0 {
		t.Errorf("purged session still has %d audit entries", len(got))
	}
	if got := svc.audit.Recent(fresh, 0); len(got) == 0 {
		t.Error("live session lost its audit trail")
	}
}

func TestService_SweepKeepsUnsaved(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.fail = errors.New("disk full")
	svc := newTestService(store, ServiceConfig{IdleTimeout: time.Minute})
	clock := time.Now()
	svc.now = func() time.Time { return clock }

	_, _, _ = svc.CreateSession(ctx)
	clock = clock.Add(time.Hour)

	if n := svc.Sweep(ctx); n != 0 {
		t.Errorf("Sweep evicted %d sessions that failed to save", n)
	}
	if svc.SessionCount() != 1 {
		t.Errorf("SessionCount = %d, want 1", svc.SessionCount())
	}
}

func TestService_FlushAll(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store, ServiceConfig{})

	id, _, _ := svc.CreateSession(ctx)
	if err := svc.FlushAll(ctx); err != nil {
		t.Fatal(err)
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}

	// Clean sessions and selection-only changes are not saved again.
	_, _ = svc.Apply(ctx, id, Action{Kind: ActionSelectColumn, Col: 1})
	_ = svc.FlushAll(ctx)
	if store.saves != 1 {
		t.Errorf("saves = %d after selection change, want 1", store.saves)
	}

	_, _ = svc.Apply(ctx, id, Action{Kind: ActionSortColumn})
	store.fail = errors.New("connection reset")
	if err := svc.FlushAll(ctx); err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("FlushAll err = %v, want store failure", err)
	}
}

func TestService_CloseSession(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store, ServiceConfig{})

	id, _, _ := svc.CreateSession(ctx)
	_ = svc.FlushAll(ctx)

	if err := svc.CloseSession(ctx, id); err != nil {
		t.Fatalf("CloseSession: %v", err)
	}
	if _, err := svc.Snapshot(ctx, id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Snapshot after close err = %v", err)
	}
	if err := svc.CloseSession(ctx, id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second CloseSession err = %v, want ErrSessionNotFound", err)
	}

	// A session that was never saved closes cleanly too.
	id2, _, _ := svc.CreateSession(ctx)
	if err := svc.CloseSession(ctx, id2); err != nil {
		t.Errorf("CloseSession(unsaved): %v", err)
	}
}

func TestService_ConcurrentApply(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil, ServiceConfig{})
	id, _, _ := svc.CreateSession(ctx)

	var wg sync.WaitGroup
	for i := 0; i < DefaultRows; i++ {
		wg.Add(1)
		go func(row int) {
			defer wg.Done()
			if _, err := svc.Apply(ctx, id, Action{Kind: ActionSetCell, Row: row, Col: 0, Value: fmt.Sprint(row)}); err != nil {
				t.Errorf("Apply row %d: %v", row, err)
			}
		}(i)
	}
	wg.Wait()

	snap, _ := svc.Snapshot(ctx, id)
	for i, row := range snap.ActiveSheet().Rows {
		if row[0] != fmt.Sprint(i) {
			t.Errorf("row %d = %q", i, row[0])
		}
	}
}

func TestService_RunSweepPurgesStore(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store, ServiceConfig{StoreRetention: 24 * time.Hour})
	clock := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	id, _, _ := svc.CreateSession(ctx)
	svc.runSweep(ctx)

	if want := clock.Add(-24 * time.Hour); !store.purgeBefore.Equal(want) {
		t.Errorf("purge cutoff = %v, want %v", store.purgeBefore, want)
	}
	if _, ok := store.states[id]; !ok {
		t.Error("runSweep should flush dirty sessions")
	}
}

func TestService_StartSweeperStops(t *testing.T) {
	svc := newTestService(nil, ServiceConfig{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		svc.StartSweeper(ctx, 5*time.Millisecond)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("StartSweeper did not return after cancel")
	}
}

func TestService_PreviewImport(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil, ServiceConfig{})

	p, err := svc.PreviewImport(ctx, "dir/report.txt", []byte("a,b,c\n1\n2,3\n4\n"), 2)
	if err != nil {
		t.Fatalf("PreviewImport: %v", err)
	}
	if p.Filename != "report.txt" || len(p.Sheets) != 1 {
		t.Fatalf("preview = %+v", p)
	}
	sh := p.Sheets[0]
	if sh.RowCount != 4 || sh.ColCount != 3 {
		t.Errorf("dimensions = %dx%d, want 4x3", sh.RowCount, sh.ColCount)
	}
	if len(sh.Sample) != 2 || len(sh.Sample[1]) != 3 {
		t.Errorf("sample = %q, want 2 padded rows", sh.Sample)
	}
	if svc.SessionCount() != 0 {
		t.Error("preview should not create sessions")
	}

	if _, err := svc.PreviewImport(ctx, "empty.txt", []byte("  "), 0); !errors.Is(err, ErrNoSheets) {
		t.Errorf("empty preview err = %v, want ErrNoSheets", err)
	}
	if _, err := svc.PreviewImport(ctx, "x.bin", []byte("x"), 0); err == nil {
		t.Error("expected error for unsupported file")
	}
}

func TestService_PreviewDoesNotQueue(t *testing.T) {
	svc := newTestService(nil, ServiceConfig{MaxConcurrentImports: 1, ImportWait: time.Second})

	if !svc.limiter.TryAcquire() {
		t.Fatal("expected a free import slot")
	}
	_, err := svc.PreviewImport(context.Background(), "a.txt", []byte("x"), 0)
	svc.limiter.Release()
	if !errors.Is(err, ErrTooManyImports) {
		t.Fatalf("err = %v, want ErrTooManyImports", err)
	}

	if _, err := svc.PreviewImport(context.Background(), "a.txt", []byte("x"), 0); err != nil {
		t.Errorf("preview after release: %v", err)
	}
}
