package bbs

import (
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lacus-ops/bbs-service/internal/domain"
)

func endedRecord() *domain.BattleRecord {
	return &domain.BattleRecord{
		ID:         primitive.NewObjectID(),
		PilotID:    primitive.NewObjectID(),
		StartTime:  time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2026, 5, 10, 18, 30, 0, 0, time.UTC),
		Revenue:    1520.5,
		BaseSalary: 300,
		WorkMode:   domain.WorkModeOffline,
		Status:     domain.RecordStatusEnded,
		Base:       "Base Alpha",
		Hall:       "H2",
		Seat:       "S7",
		Notes:      "strong night, two big gifters",
	}
}

func TestAutoPostSkipReason(t *testing.T) {
	if reason := autoPostSkipReason(endedRecord()); reason != "" {
		t.Fatalf("qualifying record skipped: %q", reason)
	}

	cases := []struct {
		name   string
		mutate func(*domain.BattleRecord)
	}{
		{"not ended", func(r *domain.BattleRecord) { r.Status = domain.RecordStatusLive }},
		{"zero revenue", func(r *domain.BattleRecord) { r.Revenue = 0 }},
		{"blank notes", func(r *domain.BattleRecord) { r.Notes = "   " }},
		{"no base", func(r *domain.BattleRecord) { r.Base = "" }},
	}
	for _, tc := range cases {
		rec := endedRecord()
		tc.mutate(rec)
		if reason := autoPostSkipReason(rec); reason == "" {
			t.Errorf("%s: expected a skip reason", tc.name)
		}
	}
}

func TestAutoPostSkipReason_GuardOrder(t *testing.T) {
	// The status guard fires before the revenue guard.
	rec := endedRecord()
	rec.Status = domain.RecordStatusLive
	rec.Revenue = 0
	if reason := autoPostSkipReason(rec); !strings.Contains(reason, "ended") {
		t.Fatalf("expected the status guard first, got %q", reason)
	}
}

func TestBuildBattleRecordContent(t *testing.T) {
	rec := endedRecord()
	pilot := &domain.Pilot{Nickname: "Luna"}

	title, content := BuildBattleRecordContent(rec, pilot, nil, time.UTC)
	if !strings.Contains(title, "Luna") || !strings.Contains(title, "2026-05-10 12:00") {
		t.Fatalf("title = %q", title)
	}
	for _, want := range []string{
		"Base Alpha-H2-S7",
		"12:00 - 18:30",
		"¥1520.50",
		"¥300.00",
		"strong night, two big gifters",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("content missing %q:\n%s", want, content)
		}
	}
}

func TestBuildBattleRecordContent_OnlineAndFallbacks(t *testing.T) {
	rec := endedRecord()
	rec.WorkMode = domain.WorkModeOnline

	_, content := BuildBattleRecordContent(rec, nil, nil, time.UTC)
	if !strings.Contains(content, "online") {
		t.Fatalf("online shift should report the online location:\n%s", content)
	}
	if !strings.Contains(content, "unknown pilot") {
		t.Fatalf("missing pilot should fall back to a placeholder:\n%s", content)
	}
}

func TestBuildBattleRecordContent_Announcement(t *testing.T) {
	rec := endedRecord()
	ann := &domain.Announcement{
		StartTime: time.Date(2026, 5, 10, 11, 0, 0, 0, time.UTC),
		Base:      "Base Alpha",
		Hall:      "H2",
	}
	_, content := BuildBattleRecordContent(rec, &domain.Pilot{Nickname: "Luna"}, ann, time.UTC)
	if !strings.Contains(content, "Linked announcement: 2026-05-10 11:00 @ Base Alpha-H2.") {
		t.Fatalf("announcement line missing:\n%s", content)
	}
}
