package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vpoint-tv/vpoint-api/database/dbtest"
	"github.com/vpoint-tv/vpoint-api/model"
)

func seedAudit(t *testing.T, svc *AuditService, inputs ...AuditInput) {
	t.Helper()
	for _, in := range inputs {
		if _, err := svc.Append(context.Background(), in); err != nil {
			t.Fatalf("Append(%+v): %v", in, err)
		}
	}
}

func sampleAudit() []AuditInput {
	return []AuditInput{
		{OperatorName: "ALPHA", Action: "login", Category: model.AuditCategoryAuth},
		{OperatorName: "ALPHA", Action: "inject", Target: "ASIA TV", Category: model.AuditCategorySignal},
		{OperatorName: "BRAVO", Action: "provision", Target: "CHARLIE", Detail: "role=Lead", Category: model.AuditCategoryOperator},
		{OperatorName: "BRAVO", Action: "delete", Target: "SKY SPORTS", Category: model.AuditCategorySignal},
		{OperatorName: "SYSTEM", Action: "update", Detail: "maintenanceMode=true", Category: model.AuditCategoryConfig},
	}
}

func TestAuditAppendAssignsIDAndTime(t *testing.T) {
	svc := NewAuditService(dbtest.Open(t))

	before := time.Now().Add(-time.Second)
	entry, err := svc.Append(context.Background(), AuditInput{OperatorName: "ALPHA", Action: "login", Category: model.AuditCategoryAuth})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if entry.ID == 0 {
		t.Fatal("expected id to be assigned")
	}
	if entry.CreatedAt.Before(before) {
		t.Fatalf("unexpected timestamp %v", entry.CreatedAt)
	}
}

func TestAuditAppendRejectsUnknownCategory(t *testing.T) {
	svc := NewAuditService(dbtest.Open(t))

	_, err := svc.Append(context.Background(), AuditInput{OperatorName: "ALPHA", Action: "x", Category: "BILLING"})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "category" {
		t.Fatalf("expected category ValidationError, got %v", err)
	}
}

func TestAuditListNewestFirst(t *testing.T) {
	svc := NewAuditService(dbtest.Open(t))
	seedAudit(t, svc, sampleAudit()...)

	entries, err := svc.List(context.Background(), AuditFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].CreatedAt.After(entries[i-1].CreatedAt) {
			t.Fatalf("entries out of order at %d: %v after %v", i, entries[i].CreatedAt, entries[i-1].CreatedAt)
		}
		if entries[i].ID > entries[i-1].ID {
			t.Fatalf("later append listed after earlier one at %d", i)
		}
	}
	if entries[0].Action != "update" {
		t.Fatalf("expected newest entry first, got %s", entries[0].Action)
	}
}

func TestAuditListCategoryIsSubset(t *testing.T) {
	svc := NewAuditService(dbtest.Open(t))
	seedAudit(t, svc, sampleAudit()...)
	ctx := context.Background()

	all, err := svc.List(ctx, AuditFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	ids := make(map[uint]bool)
	for _, e := range all {
		ids[e.ID] = true
	}

	signals, err := svc.List(ctx, AuditFilter{Category: model.AuditCategorySignal})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(signals) != 2 {
		t.Fatalf("expected 2 SIGNAL entries, got %d", len(signals))
	}
	for _, e := range signals {
		if e.Category != model.AuditCategorySignal || !ids[e.ID] {
			t.Fatalf("unexpected entry in filtered list: %+v", e)
		}
	}
}

func TestAuditListSearch(t *testing.T) {
	svc := NewAuditService(dbtest.Open(t))
	seedAudit(t, svc, sampleAudit()...)
	ctx := context.Background()

	cases := []struct {
		filter AuditFilter
		want   int
	}{
		{AuditFilter{Search: "bravo"}, 2},                                            // operator name
		{AuditFilter{Search: "sky"}, 1},                                              // target
		{AuditFilter{Search: "MAINTENANCE"}, 1},                                      // detail
		{AuditFilter{Search: "in"}, 3},                                               // login, inject, maintenance
		{AuditFilter{Search: "bravo", Category: model.AuditCategorySignal}, 1},       // AND
		{AuditFilter{Search: "alpha", Category: model.AuditCategoryConfig}, 0},       // AND, disjoint
		{AuditFilter{Search: "100%"}, 0},                                             // wildcard is literal
	}

	for _, tc := range cases {
		got, err := svc.List(ctx, tc.filter)
		if err != nil {
			t.Fatalf("List(%+v) failed: %v", tc.filter, err)
		}
		if len(got) != tc.want {
			t.Fatalf("List(%+v): expected %d entries, got %d", tc.filter, tc.want, len(got))
		}
	}
}

func TestAuditListPaging(t *testing.T) {
	svc := NewAuditService(dbtest.Open(t))
	seedAudit(t, svc, sampleAudit()...)
	ctx := context.Background()

	page2, err := svc.List(ctx, AuditFilter{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page2) != 2 || page2[0].Action != "provision" {
		t.Fatalf("unexpected second page: %+v", page2)
	}

	total, err := svc.Count(ctx, AuditFilter{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected count to ignore paging, got %d", total)
	}
}

func TestAuditPurgeRequiresSuperAdmin(t *testing.T) {
	svc := NewAuditService(dbtest.Open(t))
	seedAudit(t, svc, sampleAudit()...)
	ctx := context.Background()

	removed, err := svc.Purge(ctx, Actor{Name: "ALPHA", Role: model.RoleAdmin})
	var pe *PermissionError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PermissionError, got %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected nothing removed, got %d", removed)
	}

	total, err := svc.Count(ctx, AuditFilter{})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected log unchanged, got %d entries", total)
	}
}

type fakeArchiver struct {
	name   string
	body   []byte
	err    error
	during func()
}

func (f *fakeArchiver) ArchiveAudit(ctx context.Context, name string, body []byte) (string, error) {
	if f.during != nil {
		f.during()
	}
	if f.err != nil {
		return "", f.err
	}
	f.name, f.body = name, body
	return "s3://test/" + name, nil
}

func TestAuditPurgeArchivesFirst(t *testing.T) {
	svc := NewAuditService(dbtest.Open(t))
	archiver := &fakeArchiver{}
	svc.SetArchiver(archiver)
	seedAudit(t, svc, sampleAudit()...)
	ctx := context.Background()

	removed, err := svc.Purge(ctx, Actor{Name: "ROOT", SuperAdmin: true})
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if removed != 5 {
		t.Fatalf("expected 5 removed, got %d", removed)
	}
	if !strings.HasPrefix(string(archiver.body), AuditCSVHeader+"\n") {
		t.Fatalf("archive missing header: %q", archiver.body)
	}
	if lines := strings.Count(string(archiver.body), "\n"); lines != 6 {
		t.Fatalf("expected header plus 5 rows, got %d lines", lines)
	}

	total, _ := svc.Count(ctx, AuditFilter{})
	if total != 0 {
		t.Fatalf("expected empty log, got %d", total)
	}
}

func TestAuditPurgeKeepsEntriesAppendedDuringArchive(t *testing.T) {
	svc := NewAuditService(dbtest.Open(t))
	seedAudit(t, svc, sampleAudit()...)
	ctx := context.Background()

	archiver := &fakeArchiver{during: func() {
		if _, err := svc.Append(ctx, AuditInput{OperatorName: "LATE", Action: "update", Category: model.AuditCategoryConfig}); err != nil {
			t.Errorf("Append during archive failed: %v", err)
		}
	}}
	svc.SetArchiver(archiver)

	removed, err := svc.Purge(ctx, Actor{Name: "ROOT", SuperAdmin: true})
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if removed != 5 {
		t.Fatalf("expected 5 removed, got %d", removed)
	}
	if strings.Contains(string(archiver.body), "LATE") {
		t.Fatalf("archive should not contain the late entry: %q", archiver.body)
	}

	left, err := svc.List(ctx, AuditFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(left) != 1 || left[0].OperatorName != "LATE" {
		t.Fatalf("expected only the late entry to remain, got %+v", left)
	}
}

func TestAuditPurgeKeepsLogWhenArchiveFails(t *testing.T) {
	svc := NewAuditService(dbtest.Open(t))
	svc.SetArchiver(&fakeArchiver{err: errors.New("bucket unavailable")})
	seedAudit(t, svc, sampleAudit()...)
	ctx := context.Background()

	_, err := svc.Purge(ctx, Actor{Name: "ROOT", SuperAdmin: true})
	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StorageError, got %v", err)
	}

	total, _ := svc.Count(ctx, AuditFilter{})
	if total != 5 {
		t.Fatalf("expected log kept, got %d", total)
	}
}

func TestAuditExportCSV(t *testing.T) {
	svc := NewAuditService(dbtest.Open(t))
	seedAudit(t, svc,
		AuditInput{OperatorName: "ALPHA", Action: "inject", Target: "ASIA TV", Detail: `say "hi", then go`, Category: model.AuditCategorySignal},
	)

	var buf bytes.Buffer
	if err := svc.ExportCSV(context.Background(), &buf, AuditFilter{}); err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if lines[0] != "Time,Operator,Action,Target,Detail,Category" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	want := `,"ALPHA","inject","ASIA TV","say ""hi"", then go","SIGNAL"`
	if !strings.HasPrefix(lines[1], `"`) || !strings.HasSuffix(lines[1], want) {
		t.Fatalf("unexpected row %q", lines[1])
	}
}
