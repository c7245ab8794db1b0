package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gyeh/claimready/internal/model"
)

func sampleSnapshot() model.ClaimSnapshot {
	return model.ClaimSnapshot{
		RunID:        uuid.MustParse("7b0a4c1e-2f57-4c47-9a36-3a4f4f5a8f10"),
		PatientName:  "Asha Rao",
		PolicyNumber: "HDFC-OPT-2291",
		Insurer:      "HDFC ERGO",
		PolicyType:   "Optima Secure",
		ProcedureID:  "cataract_surgery",
		HospitalName: "Sankara Eye Hospital",
		DoctorName:   "Dr. Meera Iyer",
		Expected: model.ExpectedCosts{
			Items:    map[string]float64{"room_charges": 3500, "surgeon_fees": 18000},
			Total:    52000,
			StayDays: 1,
		},
		Score:             75,
		Status:            model.StatusFail,
		ValidationSummary: "Pre-authorization has blocking issues",
		InputFingerprint:  "abc123",
	}
}

func TestNewReferenceID(t *testing.T) {
	day := time.Date(2025, 10, 5, 23, 0, 0, 0, time.UTC)
	if got := NewReferenceID(day, 12345); got != "CR-20251005-12345" {
		t.Errorf("got %q", got)
	}
	for range 200 {
		id := NewReferenceID(day, RandomSuffix())
		if !ValidReferenceID(id) {
			t.Fatalf("invalid id %q", id)
		}
	}
	for _, bad := range []string{"", "CR-2025105-12345", "CR-20251005-1234", "cr-20251005-12345", "CR-20251005-12345x"} {
		if ValidReferenceID(bad) {
			t.Errorf("%q should be invalid", bad)
		}
	}
}

func TestMemory_SaveLoad(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	id, err := m.Save(ctx, sampleSnapshot())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !ValidReferenceID(id) {
		t.Errorf("id %q has the wrong shape", id)
	}

	got, err := m.Load(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ReferenceID != id || got.Expected.Total != 52000 || got.CreatedAt.IsZero() {
		t.Errorf("unexpected snapshot %+v", got)
	}
}

func TestMemory_LoadMissing(t *testing.T) {
	_, err := NewMemory().Load(context.Background(), "CR-20250101-10000")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemory_RegeneratesOnCollision(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	suffixes := []int{11111, 11111, 22222}
	m.suffix = func() int {
		s := suffixes[0]
		suffixes = suffixes[1:]
		return s
	}

	first, err := m.Save(ctx, sampleSnapshot())
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.Save(ctx, sampleSnapshot())
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatalf("ids collided: %s", first)
	}
	if second[len(second)-5:] != "22222" {
		t.Errorf("second id = %s, want the regenerated suffix", second)
	}
}

func TestMemory_GivesUpAfterBoundedAttempts(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.suffix = func() int { return 33333 }

	if _, err := m.Save(ctx, sampleSnapshot()); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Save(ctx, sampleSnapshot()); !errors.Is(err, errIDTaken) {
		t.Fatalf("expected errIDTaken, got %v", err)
	}
}

func TestMemory_ListMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	base := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)

	var ids []string
	for i := range 3 {
		s := sampleSnapshot()
		s.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		id, err := m.Save(ctx, s)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}

	got, err := m.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2, got %d", len(got))
	}
	if got[0].ReferenceID != ids[2] || got[1].ReferenceID != ids[1] {
		t.Errorf("order = %s, %s", got[0].ReferenceID, got[1].ReferenceID)
	}
}
