package services

import (
	"context"
	"errors"
	"testing"

	"github.com/vpoint-tv/vpoint-api/database/dbtest"
	"github.com/vpoint-tv/vpoint-api/model"
)

func TestOperatorUpsertSameNameUpdatesInPlace(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewOperatorService(db)
	ctx := context.Background()

	first, err := svc.Upsert(ctx, admin, OperatorInput{Name: "Commander Alpha", Role: "Lead", Status: "Active"})
	if err != nil {
		t.Fatalf("first Upsert failed: %v", err)
	}
	if !first.Success || !first.Created {
		t.Fatalf("expected creation, got %+v", first)
	}
	if first.Operator.Name != "COMMANDER ALPHA" {
		t.Fatalf("expected uppercased name, got %q", first.Operator.Name)
	}
	if first.Operator.LastActive.IsZero() {
		t.Fatal("expected lastActive to be set on creation")
	}

	second, err := svc.Upsert(ctx, admin, OperatorInput{Name: "COMMANDER ALPHA", Role: "Analyst", Status: "Active"})
	if err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}
	if second.Created {
		t.Fatal("expected second call to update")
	}
	if second.Operator.ID != first.Operator.ID {
		t.Fatalf("expected same id, got %s and %s", first.Operator.ID, second.Operator.ID)
	}

	ops, err := svc.List(ctx, OperatorFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(ops) != 1 || ops[0].Role != model.RoleAnalyst {
		t.Fatalf("expected one operator with role Analyst, got %+v", ops)
	}

	entries, err := NewAuditService(db).List(ctx, AuditFilter{Category: model.AuditCategoryOperator})
	if err != nil {
		t.Fatalf("List audit failed: %v", err)
	}
	if len(entries) != 2 || entries[0].Action != "update" || entries[1].Action != "provision" {
		t.Fatalf("unexpected OPERATOR entries: %+v", entries)
	}
}

func TestOperatorUpsertValidation(t *testing.T) {
	svc := NewOperatorService(dbtest.Open(t))
	ctx := context.Background()

	cases := []struct {
		in    OperatorInput
		field string
	}{
		{OperatorInput{Name: "   "}, "name"},
		{OperatorInput{Name: "ALPHA", Role: "Overlord"}, "role"},
		{OperatorInput{Name: "ALPHA", Status: "Retired"}, "status"},
		{OperatorInput{Name: "ALPHA", Password: "short"}, "password"},
	}
	for _, tc := range cases {
		_, err := svc.Upsert(ctx, admin, tc.in)
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != tc.field {
			t.Fatalf("Upsert(%+v): expected ValidationError on %q, got %v", tc.in, tc.field, err)
		}
	}
}

func TestOperatorPasswordKeptWhenBlank(t *testing.T) {
	svc := NewOperatorService(dbtest.Open(t))
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, admin, OperatorInput{Name: "ALPHA", Password: "correct horse"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if _, err := svc.Upsert(ctx, admin, OperatorInput{Name: "ALPHA", Role: "Lead"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "alpha", "correct horse", "127.0.0.1"); err != nil {
		t.Fatalf("expected credential to survive a blank password update: %v", err)
	}
}

func TestOperatorPasswordRotationKeepsRoleAndStatus(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewOperatorService(db)
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, admin, OperatorInput{Name: "bravo", Role: "Lead", Status: "Suspended"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	res, err := svc.Upsert(ctx, admin, OperatorInput{Name: "bravo", Password: "newpassword1"})
	if err != nil {
		t.Fatalf("password-only Upsert failed: %v", err)
	}
	if res.Operator.Role != model.RoleLead || res.Operator.Status != model.OperatorSuspended {
		t.Fatalf("expected Lead/Suspended to be kept, got role=%s status=%s", res.Operator.Role, res.Operator.Status)
	}

	if _, err := svc.Authenticate(ctx, "bravo", "newpassword1", "127.0.0.1"); !errors.Is(err, ErrOperatorSuspended) {
		t.Fatalf("expected suspended operator to stay locked out, got %v", err)
	}

	entries, err := NewAuditService(db).List(ctx, AuditFilter{Category: model.AuditCategoryOperator})
	if err != nil {
		t.Fatalf("List audit failed: %v", err)
	}
	if len(entries) == 0 || entries[0].Action != "update" || entries[0].Detail != "role=Lead status=Suspended credential rotated" {
		t.Fatalf("unexpected latest OPERATOR entry: %+v", entries)
	}
}

func TestOperatorDelete(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewOperatorService(db)
	ctx := context.Background()

	res, err := svc.Upsert(ctx, admin, OperatorInput{Name: "BRAVO"})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if err := svc.Delete(ctx, admin, res.Operator.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	var nf *NotFoundError
	if err := svc.Delete(ctx, admin, res.Operator.ID); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError on second delete, got %v", err)
	}

	entries, _ := NewAuditService(db).List(ctx, AuditFilter{Search: "terminate"})
	if len(entries) != 1 || entries[0].Target != "BRAVO" {
		t.Fatalf("expected a terminate entry, got %+v", entries)
	}
}

func TestOperatorDeleteSuperAdminNeedsSuperAdmin(t *testing.T) {
	svc := NewOperatorService(dbtest.Open(t))
	ctx := context.Background()

	res, err := svc.Upsert(ctx, SystemActor, OperatorInput{Name: "ROOT", Role: "Admin"})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := svc.SetSuperAdmin(ctx, SystemActor, "root", true); err != nil {
		t.Fatalf("SetSuperAdmin failed: %v", err)
	}

	var pe *PermissionError
	if err := svc.Delete(ctx, admin, res.Operator.ID); !errors.As(err, &pe) {
		t.Fatalf("expected PermissionError, got %v", err)
	}
	if err := svc.Delete(ctx, Actor{OperatorID: "other", Name: "ZULU", SuperAdmin: true}, res.Operator.ID); err != nil {
		t.Fatalf("expected super admin to terminate, got %v", err)
	}
}

func TestOperatorCannotTerminateSelf(t *testing.T) {
	svc := NewOperatorService(dbtest.Open(t))
	ctx := context.Background()

	res, err := svc.Upsert(ctx, admin, OperatorInput{Name: "ECHO"})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	self := Actor{OperatorID: res.Operator.ID, Name: "ECHO"}

	var ve *ValidationError
	if err := svc.Delete(ctx, self, res.Operator.ID); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	ops := []model.Operator{
		{Name: "A", Role: model.RoleLead, Status: model.OperatorActive},
		{Name: "B", Role: model.RoleLead, Status: model.OperatorSuspended},
		{Name: "C", Role: model.RoleAnalyst, Status: model.OperatorActive},
	}

	sum := Summarize(ops)
	if sum.Total != 3 || sum.Active != 2 || sum.Lead != 2 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if Summarize(nil) != (OperatorSummary{}) {
		t.Fatal("expected zero summary for empty list")
	}
}

func TestAuthenticate(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewOperatorService(db)
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, admin, OperatorInput{Name: "DELTA", Password: "s3cret-pass"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "DELTA", "wrong-pass", "10.0.0.1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "NOBODY", "whatever", "10.0.0.1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown operator, got %v", err)
	}

	op, err := svc.Authenticate(ctx, " delta ", "s3cret-pass", "10.0.0.1")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if op.Name != "DELTA" {
		t.Fatalf("unexpected operator %+v", op)
	}

	if _, err := svc.Upsert(ctx, admin, OperatorInput{Name: "DELTA", Status: "Suspended"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "DELTA", "s3cret-pass", "10.0.0.1"); !errors.Is(err, ErrOperatorSuspended) {
		t.Fatalf("expected ErrOperatorSuspended, got %v", err)
	}

	auth, err := NewAuditService(db).List(ctx, AuditFilter{Category: model.AuditCategoryAuth})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(auth) != 4 {
		t.Fatalf("expected 4 AUTH entries, got %d", len(auth))
	}
}
