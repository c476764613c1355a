package ledger_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"docledger/internal/ledger"
	"docledger/internal/testutil"
)

type fixture struct {
	t     *testing.T
	svc   *ledger.Service
	store *testutil.CountingStore
	ids   *testutil.StubTxIDGenerator
	clock *testutil.StubClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:     t,
		store: testutil.NewTestStore(),
		ids:   testutil.NewStubTxIDGenerator(),
		clock: testutil.FixedClock(),
	}
	f.svc = ledger.NewService(f.store, ledger.NewNopLogger(), f.clock, f.ids, nil)
	return f
}

func (f *fixture) project(t *testing.T) string {
	t.Helper()
	res, err := f.svc.AddProject(context.Background(), "N", "L", "alice")
	if err != nil {
		t.Fatalf("AddProject() error = %v", err)
	}
	return res.Hash
}

// ok fails the test unless the call succeeded with 200.
func (f *fixture) ok(res ledger.ReturnMessage, err error) ledger.ReturnMessage {
	t := f.t
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error = %v", err)
	}
	if !res.OK() {
		t.Fatalf("Result = %d (%s), want 200", res.Result, res.Message)
	}
	return res
}

func assertResult(t *testing.T, res ledger.ReturnMessage, err error, code uint, kind ledger.Kind, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error = %v", err)
	}
	if res.Result != code || res.Kind != kind || res.Message != msg {
		t.Errorf("result = {%d %s %q}, want {%d %s %q}", res.Result, res.Kind, res.Message, code, kind, msg)
	}
}

func TestService_AddProject(t *testing.T) {
	ctx := context.Background()

	t.Run("creates project keyed by hash of logo and name", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.svc.AddProject(ctx, "N", "L", "alice")
		assertResult(t, res.ReturnMessage, err, 200, ledger.KindOK, "Project added successfully")
		if res.Hash != ledger.ProjectHash("L", "N") {
			t.Errorf("Hash = %s, want %s", res.Hash, ledger.ProjectHash("L", "N"))
		}
		if res.TransactionHash != "tx-1" {
			t.Errorf("TransactionHash = %q, want tx-1", res.TransactionHash)
		}

		p, err := f.svc.GetProject(ctx, res.Hash)
		if err != nil {
			t.Fatalf("GetProject() error = %v", err)
		}
		if p.CreatedBy != "alice" {
			t.Errorf("CreatedBy = %q, want alice", p.CreatedBy)
		}
		want := ledger.UpdateLog{TimeStamp: f.clock.Now(), TransactionHash: "tx-1", TransactionType: ledger.TypeAddProject}
		if p.UpdateLogs != want {
			t.Errorf("UpdateLogs = %+v, want %+v", p.UpdateLogs, want)
		}
	})

	t.Run("second call conflicts and keeps original", func(t *testing.T) {
		f := newFixture(t)
		first, _ := f.svc.AddProject(ctx, "N", "L", "alice")
		res, err := f.svc.AddProject(ctx, "N", "L", "mallory")
		assertResult(t, res.ReturnMessage, err, 409, ledger.KindConflict, "Project already exists")
		if res.Hash != first.Hash {
			t.Errorf("conflict Hash = %s, want %s", res.Hash, first.Hash)
		}
		if f.store.Writes() != 1 {
			t.Errorf("Writes() = %d, want 1", f.store.Writes())
		}
		p, _ := f.svc.GetProject(ctx, first.Hash)
		if p.CreatedBy != "alice" {
			t.Errorf("CreatedBy = %q, want alice", p.CreatedBy)
		}
	})
}

func TestService_QueryProject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hash := f.project(t)

	q, err := f.svc.QueryProject(ctx, hash)
	if err != nil {
		t.Fatalf("QueryProject() error = %v", err)
	}
	if !q.Found || q.Result != 200 || q.Message != "Project found" || q.CreatedBy != "alice" {
		t.Errorf("QueryProject(existing) = %+v", q)
	}

	q, err = f.svc.QueryProject(ctx, "missing")
	if err != nil {
		t.Fatalf("QueryProject() error = %v", err)
	}
	// A missing project is still 200; only the message and Found differ.
	if q.Found || q.Result != 200 || q.Message != "Project not found" {
		t.Errorf("QueryProject(missing) = %+v, want 200 Project not found", q)
	}
}

func TestService_GetProjectMissing(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetProject(context.Background(), "missing")
	if !errors.Is(err, ledger.ErrProjectNotFound) {
		t.Errorf("GetProject() error = %v, want ErrProjectNotFound", err)
	}
}

func TestService_ProjectNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	const missing = "no-such-project"

	calls := map[string]func() (ledger.ReturnMessage, error){
		"AddFolder":    func() (ledger.ReturnMessage, error) { return f.svc.AddFolder(ctx, missing, missing, "x") },
		"AddSubFolder": func() (ledger.ReturnMessage, error) { return f.svc.AddSubFolder(ctx, missing, missing, "f", "x") },
		"AddUser":      func() (ledger.ReturnMessage, error) { return f.svc.AddUser(ctx, missing, "n", "u") },
		"AddUserAccess": func() (ledger.ReturnMessage, error) {
			return f.svc.AddUserAccess(ctx, missing, "u")
		},
		"RemoveUserAccess": func() (ledger.ReturnMessage, error) {
			return f.svc.RemoveUserAccess(ctx, missing, "u")
		},
		"AddFile": func() (ledger.ReturnMessage, error) {
			return f.svc.AddFile(ctx, missing, "f1", "t", "u", "d", "")
		},
		"AcceptFile": func() (ledger.ReturnMessage, error) { return f.svc.AcceptFile(ctx, missing, "f1") },
		"RejectFile": func() (ledger.ReturnMessage, error) { return f.svc.RejectFile(ctx, missing, "f1") },
		"UpdateFile": func() (ledger.ReturnMessage, error) {
			return f.svc.UpdateFile(ctx, missing, "f1", ledger.StatusAmber)
		},
		"AddValidator": func() (ledger.ReturnMessage, error) {
			return f.svc.AddValidator(ctx, missing, "f1", ledger.ValidatorInput{ID: "v1"})
		},
		"AddValidatorAccess": func() (ledger.ReturnMessage, error) {
			return f.svc.AddValidatorAccess(ctx, missing, "f1", "v1", "")
		},
		"RemoveValidatorAccess": func() (ledger.ReturnMessage, error) {
			return f.svc.RemoveValidatorAccess(ctx, missing, "f1", "v1", "")
		},
		"UpdateValidatorAfterFileValidation": func() (ledger.ReturnMessage, error) {
			return f.svc.UpdateValidatorAfterFileValidation(ctx, missing, "f1", "v@x", ledger.StatusGreen)
		},
		"AddSupplier": func() (ledger.ReturnMessage, error) {
			return f.svc.AddSupplier(ctx, missing, ledger.SupplierInput{SupplierEmail: "s@x"})
		},
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			res, err := call()
			assertResult(t, res, err, 404, ledger.KindParentNotFound, "Project not found")
		})
	}
	if f.store.Writes() != 0 {
		t.Errorf("Writes() = %d, want 0", f.store.Writes())
	}
	if f.store.Records() != len(calls) {
		t.Errorf("Records() = %d, want %d", f.store.Records(), len(calls))
	}
}

func TestService_FolderInsertions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hash := f.project(t)

	for i, name := range []string{"Contracts", "Invoices", "Permits"} {
		f.ok(f.svc.AddFolder(ctx, hash, hash, name))
		p, _ := f.svc.GetProject(ctx, hash)
		if len(p.Folders) != i+1 {
			t.Fatalf("len(Folders) = %d after %d inserts", len(p.Folders), i+1)
		}
	}

	res, err := f.svc.AddFolder(ctx, hash, hash, "Invoices")
	assertResult(t, res, err, 409, ledger.KindConflict, "Folder with the same name already exists")
	p, _ := f.svc.GetProject(ctx, hash)
	if len(p.Folders) != 3 {
		t.Errorf("len(Folders) = %d after duplicate, want 3", len(p.Folders))
	}
}

func TestService_UserAccessWritesOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hash := f.project(t)
	f.ok(f.svc.AddUser(ctx, hash, "Bob", "u1"))
	f.ok(f.svc.RemoveUserAccess(ctx, hash, "u1"))

	before := f.store.Writes()
	first := f.ok(f.svc.AddUserAccess(ctx, hash, "u1"))
	second := f.ok(f.svc.AddUserAccess(ctx, hash, "u1"))

	if first.Message != "User's access added successfully" {
		t.Errorf("first message = %q", first.Message)
	}
	if second.Message != "User's access is already enabled" || second.Kind != ledger.KindNoChange {
		t.Errorf("second = %+v, want no-op", second)
	}
	if got := f.store.Writes() - before; got != 1 {
		t.Errorf("aggregate written %d times, want 1", got)
	}

	res, err := f.svc.AddUserAccess(ctx, hash, "ghost")
	assertResult(t, res, err, 404, ledger.KindChildNotFound, "User not found")
}

func TestService_FileAcceptReject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hash := f.project(t)
	f.ok(f.svc.AddFile(ctx, hash, "f1", "Contract", "u1", "folder", "2025-12-31"))

	before := f.store.Writes()
	f.ok(f.svc.AcceptFile(ctx, hash, "f1"))
	again := f.ok(f.svc.AcceptFile(ctx, hash, "f1"))
	if again.Message != "File status already accepted" {
		t.Errorf("second AcceptFile() message = %q", again.Message)
	}
	if got := f.store.Writes() - before; got != 1 {
		t.Errorf("aggregate written %d times, want 1", got)
	}

	rej := f.ok(f.svc.RejectFile(ctx, hash, "f1"))
	if rej.Message != "File status rejected successfully" {
		t.Errorf("RejectFile() message = %q", rej.Message)
	}
	p, _ := f.svc.GetProject(ctx, hash)
	if p.Files[0].FileStatus != ledger.StatusRed {
		t.Errorf("status = %q, want RED", p.Files[0].FileStatus)
	}
}

func TestService_UpdateFileCustomStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hash := f.project(t)
	f.ok(f.svc.AddFile(ctx, hash, "f1", "Contract", "u1", "folder", ""))

	res := f.ok(f.svc.UpdateFile(ctx, hash, "f1", "PURPLE"))
	if res.Message != "File status updated successfully" {
		t.Errorf("message = %q", res.Message)
	}
	p, _ := f.svc.GetProject(ctx, hash)
	if p.Files[0].FileStatus != "PURPLE" {
		t.Errorf("status = %q, want PURPLE verbatim", p.Files[0].FileStatus)
	}
}

func TestService_ValidationFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hash := f.project(t)
	f.ok(f.svc.AddFile(ctx, hash, "f1", "Contract", "u1", "folder", ""))

	in := ledger.ValidatorInput{ID: "v1", IP: "10.0.0.1", Email: "v1@example.com", Organization: "Acme", CanSign: "true"}
	res, err := f.svc.AddValidator(ctx, hash, "missing-file", in)
	assertResult(t, res, err, 409, ledger.KindParentNotFound, "File does not exist")

	f.ok(f.svc.AddValidator(ctx, hash, "f1", in))
	res, err = f.svc.AddValidator(ctx, hash, "f1", in)
	assertResult(t, res, err, 409, ledger.KindConflict, "File validator already exists")

	res, err = f.svc.RemoveValidatorAccess(ctx, hash, "f1", "v9", "")
	assertResult(t, res, err, 409, ledger.KindChildNotFound, "File validator does not exist")

	removed := f.ok(f.svc.RemoveValidatorAccess(ctx, hash, "f1", "v1", "v1@example.com"))
	if removed.Message != "File validator's access removed successfully" {
		t.Errorf("message = %q", removed.Message)
	}

	validated := f.ok(f.svc.UpdateValidatorAfterFileValidation(ctx, hash, "f1", "v1@example.com", ledger.StatusGreen))
	if validated.Message != "File validator status updated successfully" {
		t.Errorf("message = %q", validated.Message)
	}

	p, _ := f.svc.GetProject(ctx, hash)
	v := p.Files[0].Validators[0]
	if v.FileStatus != ledger.StatusGreen {
		t.Errorf("validator status = %q, want GREEN", v.FileStatus)
	}
	if v.FileValidationHash != validated.TransactionHash {
		t.Errorf("FileValidationHash = %q, want %q", v.FileValidationHash, validated.TransactionHash)
	}
	if !v.IsRevoked {
		t.Error("validation should not restore revoked access")
	}
	if p.Files[0].FileStatus != ledger.StatusRed {
		t.Errorf("file status = %q, want RED (opinions are not aggregated)", p.Files[0].FileStatus)
	}
}

func TestService_AddSupplier(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hash := f.project(t)
	in := ledger.SupplierInput{Category: "Legal", ContactName: "Carol", SupplierID: "s1", SupplierEmail: "carol@acme.test", CompanyName: "Acme"}

	res := f.ok(f.svc.AddSupplier(ctx, hash, in))
	if res.Message != "Supplier added successfully" {
		t.Errorf("message = %q", res.Message)
	}
	dup, err := f.svc.AddSupplier(ctx, hash, in)
	assertResult(t, dup, err, 409, ledger.KindConflict, "Supplier with the same email already exists")
}

// TestService_Scenario walks the reference flow: project, folder, duplicate
// folder, file, accept, validator, double access grant.
func TestService_Scenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	proj, err := f.svc.AddProject(ctx, "N", "L", "alice")
	assertResult(t, proj.ReturnMessage, err, 200, ledger.KindOK, "Project added successfully")
	h1 := proj.Hash

	f.ok(f.svc.AddFolder(ctx, h1, h1, "Contracts"))
	p, _ := f.svc.GetProject(ctx, h1)
	if len(p.Folders) != 1 {
		t.Fatalf("len(Folders) = %d, want 1", len(p.Folders))
	}

	res, err := f.svc.AddFolder(ctx, h1, h1, "Contracts")
	assertResult(t, res, err, 409, ledger.KindConflict, "Folder with the same name already exists")

	f.ok(f.svc.AddFile(ctx, h1, "f1", "Master agreement", "u1", p.Folders[0].FolderHash, "2030-01-01"))
	p, _ = f.svc.GetProject(ctx, h1)
	if p.Files[0].FileStatus != ledger.StatusRed {
		t.Fatalf("initial status = %q, want RED", p.Files[0].FileStatus)
	}

	res, err = f.svc.AcceptFile(ctx, h1, "f1")
	assertResult(t, res, err, 200, ledger.KindOK, "File status accepted successfully")

	f.ok(f.svc.AddValidator(ctx, h1, "f1", ledger.ValidatorInput{ID: "v1", Email: "v1@example.com", CanSign: "true"}))
	p, _ = f.svc.GetProject(ctx, h1)
	if p.Files[0].FileStatus != ledger.StatusGreen {
		t.Errorf("status = %q, want GREEN", p.Files[0].FileStatus)
	}
	if len(p.Files[0].Validators) != 1 {
		t.Fatalf("validator count = %d, want 1", len(p.Files[0].Validators))
	}

	writes := f.store.Writes()
	a1, err := f.svc.AddValidatorAccess(ctx, h1, "f1", "v1", "v1@example.com")
	assertResult(t, a1, err, 200, ledger.KindNoChange, "File validator's access is already enabled")
	a2, err := f.svc.AddValidatorAccess(ctx, h1, "f1", "v1", "v1@example.com")
	assertResult(t, a2, err, 200, ledger.KindNoChange, "File validator's access is already enabled")
	if f.store.Writes() != writes {
		t.Errorf("access grants wrote the aggregate %d times, want 0", f.store.Writes()-writes)
	}
}

func TestService_StampsEntities(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hash := f.project(t)

	f.clock.Advance(time.Hour)
	res := f.ok(f.svc.AddFolder(ctx, hash, hash, "Contracts"))
	if res.TransactionHash != f.ids.Last() {
		t.Errorf("TransactionHash = %q, want %q", res.TransactionHash, f.ids.Last())
	}

	p, _ := f.svc.GetProject(ctx, hash)
	got := p.Folders[0].UpdateLogs
	want := ledger.UpdateLog{TimeStamp: f.clock.Now(), TransactionHash: res.TransactionHash, TransactionType: ledger.TypeAddFolder}
	if got != want {
		t.Errorf("folder UpdateLogs = %+v, want %+v", got, want)
	}
	if !p.UpdateLogs.TimeStamp.Before(got.TimeStamp) {
		t.Errorf("project stamp %v should precede folder stamp %v", p.UpdateLogs.TimeStamp, got.TimeStamp)
	}
	if p.Folders[0].FolderHash != ledger.FolderHash(hash, "Contracts") {
		t.Errorf("FolderHash = %s, want hash(project_id, name)", p.Folders[0].FolderHash)
	}
}

func TestService_History(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hash := f.project(t)
	f.ok(f.svc.AddFolder(ctx, hash, hash, "Contracts"))
	f.svc.AddFolder(ctx, hash, hash, "Contracts")

	txs, err := f.svc.History(ctx, 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("len(History()) = %d, want 3", len(txs))
	}
	if txs[0].Type != ledger.TypeAddFolder || txs[0].Result != 409 || txs[0].Kind != ledger.KindConflict {
		t.Errorf("latest entry = %+v, want rejected Add Folder", txs[0])
	}
	if txs[2].Type != ledger.TypeAddProject || txs[2].Hash != "tx-1" {
		t.Errorf("oldest entry = %+v, want Add Project tx-1", txs[2])
	}

	limited, _ := f.svc.History(ctx, 1)
	if len(limited) != 1 || limited[0].Hash != txs[0].Hash {
		t.Errorf("History(1) = %+v", limited)
	}
}

// fakeMetrics records every observation.
type fakeMetrics struct {
	seen map[ledger.TransactionType][]uint
}

func (m *fakeMetrics) ObserveOperation(op ledger.TransactionType, code uint) {
	if m.seen == nil {
		m.seen = make(map[ledger.TransactionType][]uint)
	}
	m.seen[op] = append(m.seen[op], code)
}

func TestService_Metrics(t *testing.T) {
	ctx := context.Background()
	m := &fakeMetrics{}
	svc := ledger.NewService(testutil.NewTestStore(), ledger.NewNopLogger(), testutil.FixedClock(), testutil.NewStubTxIDGenerator(), m)

	res, _ := svc.AddProject(ctx, "N", "L", "alice")
	svc.AddProject(ctx, "N", "L", "alice")
	svc.AcceptFile(ctx, res.Hash, "missing")

	if got := m.seen[ledger.TypeAddProject]; len(got) != 2 || got[0] != 200 || got[1] != 409 {
		t.Errorf("Add Project observations = %v, want [200 409]", got)
	}
	if got := m.seen[ledger.TypeAcceptFile]; len(got) != 1 || got[0] != 404 {
		t.Errorf("Accept File observations = %v, want [404]", got)
	}
}

func TestService_VersionAdvancesOnChange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	h := f.project(t)

	f.ok(f.svc.AddFolder(ctx, h, h, "Contracts"))
	f.svc.AddFolder(ctx, h, h, "Contracts")

	p, err := f.svc.GetProject(ctx, h)
	if err != nil {
		t.Fatalf("GetProject() error = %v", err)
	}
	if p.Version != 2 {
		t.Errorf("Version = %d, want 2", p.Version)
	}
}

func TestService_NewProjectEncodesEmptyCollections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	h := f.project(t)
	f.ok(f.svc.AddFile(ctx, h, "f1", "Agreement", "u1", "d", ""))

	p, err := f.svc.GetProject(ctx, h)
	if err != nil {
		t.Fatalf("GetProject() error = %v", err)
	}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, want := range []string{`"folders":[]`, `"sub_folders":[]`, `"users":[]`, `"suppliers":[]`, `"validators":[]`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("encoded project missing %s: %s", want, data)
		}
	}
}

func TestService_ConcurrentWriteIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	h := f.project(t)

	// A second service over the same backing store stands in for another
	// process that writes between this service's load and update.
	other := ledger.NewService(f.store.Store, ledger.NewNopLogger(), f.clock, testutil.NewStubTxIDGenerator(), nil)
	f.store.BeforeUpdate = func(ctx context.Context) {
		f.store.BeforeUpdate = nil
		if _, err := other.AddFolder(ctx, h, h, "FromOther"); err != nil {
			t.Errorf("AddFolder() on other service error = %v", err)
		}
	}

	_, err := f.svc.AddFolder(ctx, h, h, "FromSelf")
	if !errors.Is(err, ledger.ErrProjectModified) {
		t.Fatalf("AddFolder() error = %v, want ErrProjectModified", err)
	}

	p, _ := f.svc.GetProject(ctx, h)
	if len(p.Folders) != 1 || p.Folders[0].FolderName != "FromOther" {
		t.Errorf("Folders = %+v, want only FromOther", p.Folders)
	}
}

func TestService_ValidatorAccessMatchesByID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hash := f.project(t)
	f.ok(f.svc.AddFile(ctx, hash, "f1", "Contract", "u1", "folder", ""))
	f.ok(f.svc.AddValidator(ctx, hash, "f1", ledger.ValidatorInput{ID: "v1", Email: "v1@example.com"}))

	tests := []struct {
		name        string
		call        func(id, email string) (ledger.ReturnMessage, error)
		email       string
		wantRevoked bool
	}{
		{name: "revoke with unrelated email", call: func(id, email string) (ledger.ReturnMessage, error) {
			return f.svc.RemoveValidatorAccess(ctx, hash, "f1", id, email)
		}, email: "someone-else@example.com", wantRevoked: true},
		{name: "grant with empty email", call: func(id, email string) (ledger.ReturnMessage, error) {
			return f.svc.AddValidatorAccess(ctx, hash, "f1", id, email)
		}, email: "", wantRevoked: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.call("v1", tt.email)
			if err != nil || !res.OK() {
				t.Fatalf("call = %+v, %v, want 200", res, err)
			}
			p, _ := f.svc.GetProject(ctx, hash)
			if got := p.Files[0].Validators[0].IsRevoked; got != tt.wantRevoked {
				t.Errorf("IsRevoked = %v, want %v", got, tt.wantRevoked)
			}
		})
	}
}
