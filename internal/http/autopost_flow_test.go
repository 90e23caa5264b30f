package http_test

import (
	"encoding/json"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/lacus-ops/bbs-service/internal/domain"
)

func seedArea(env *testEnv, base, hall, seat string) {
	env.T.Helper()
	a := &domain.BattleArea{Base: base, Hall: hall, Seat: seat, Enabled: true}
	if err := env.Store.InsertBattleArea(env.Ctx, a); err != nil {
		env.T.Fatalf("seed area: %v", err)
	}
}

func seedRecord(env *testEnv, pilot *domain.Pilot, registrar *domain.User, mutate func(*domain.BattleRecord)) *domain.BattleRecord {
	env.T.Helper()
	r := &domain.BattleRecord{
		PilotID:        pilot.ID,
		StartTime:      time.Now().Add(-6 * time.Hour).UTC(),
		EndTime:        time.Now().UTC(),
		Revenue:        1200,
		BaseSalary:     300,
		WorkMode:       domain.WorkModeOffline,
		Status:         domain.RecordStatusLive,
		Base:           "Base Alpha",
		Hall:           "H1",
		Seat:           "S1",
		RegisteredByID: registrar.ID,
		Notes:          "great session",
	}
	if mutate != nil {
		mutate(r)
	}
	if err := env.Store.InsertBattleRecord(env.Ctx, r); err != nil {
		env.T.Fatalf("seed record: %v", err)
	}
	return r
}

func Test_BoardProvisioning_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	staff := env.seedUser("alice", "", domain.RoleSergeant)
	seedArea(env, "Base Alpha", "H1", "S1")
	seedArea(env, "Base Alpha", "H1", "S2")
	seedArea(env, "Base Beta", "H1", "S1")
	seedArea(env, "", "H9", "S9")
	hdr := env.auth(staff)

	countBoards := func() int {
		w := env.do("GET", "/api/bbs/boards", "", hdr)
		if w.Code != 200 {
			t.Fatalf("boards: %d %s", w.Code, w.Body.String())
		}
		var items []map[string]interface{}
		if err := json.Unmarshal(decode(t, w).Data, &items); err != nil {
			t.Fatal(err)
		}
		return len(items)
	}

	// Two distinct bases, the empty one skipped; a second scan adds nothing.
	if n := countBoards(); n != 2 {
		t.Fatalf("boards after first scan = %d, want 2", n)
	}
	if n := countBoards(); n != 2 {
		t.Fatalf("boards after second scan = %d, want 2", n)
	}

	b, err := env.Store.FindBoardByCode(env.Ctx, "base-alpha")
	if err != nil {
		t.Fatalf("base-alpha board: %v", err)
	}
	if b.BoardType != domain.BoardTypeBase || b.BaseCode != "Base Alpha" || !b.IsActive {
		t.Fatalf("board shape: %+v", b)
	}
}

func Test_EndBattleRecord_AutoPost(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	operator := env.seedUser("ops", "", domain.RoleOperator)
	owner := env.seedUser("owner", "owner@example.com", domain.RoleSergeant)
	pilot := env.seedPilot("Luna", owner)
	rec := seedRecord(env, pilot, operator, nil)
	hdr := env.auth(operator)

	w := env.do("POST", "/api/battle-records/"+rec.ID.Hex()+"/end", "", hdr)
	if w.Code != 200 {
		t.Fatalf("end: %d %s", w.Code, w.Body.String())
	}
	data := dataMap(t, w)
	if data["post_created"] != true {
		t.Fatalf("expected a post: %s", w.Body.String())
	}
	post := data["post"].(map[string]interface{})
	postID := post["id"].(string)
	if author := post["author"].(map[string]interface{}); author["id"] != owner.ID.Hex() {
		t.Fatalf("author should be the pilot owner: %v", author)
	}

	// Ending again returns the same post, not a duplicate.
	w = env.do("POST", "/api/battle-records/"+rec.ID.Hex()+"/end", "", hdr)
	if w.Code != 200 {
		t.Fatalf("re-end: %d %s", w.Code, w.Body.String())
	}
	if again := dataMap(t, w)["post"].(map[string]interface{})["id"]; again != postID {
		t.Fatalf("duplicate auto post: %v vs %v", again, postID)
	}
	n, err := env.Store.CountPosts(env.Ctx, bson.M{})
	if err != nil || n != 1 {
		t.Fatalf("post count = %d (%v)", n, err)
	}

	// The owner was mailed.
	mailed := false
	for _, m := range env.Mail.mails() {
		for _, to := range m.To {
			if to == "owner@example.com" {
				mailed = true
			}
		}
	}
	if !mailed {
		t.Fatal("expected an owner digest")
	}

	// The auto pilot ref is in place.
	stored, _ := env.Svc.GetPost(env.Ctx, mustOID(t, postID))
	refs, err := env.Store.ListPilotRefsForPost(env.Ctx, stored.ID, domain.RelevanceAuto)
	if err != nil || len(refs) != 1 || refs[0].PilotID != pilot.ID {
		t.Fatalf("auto ref: %v (%v)", refs, err)
	}
}

func Test_EndBattleRecord_GuardsAndRoles(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	operator := env.seedUser("ops", "", domain.RoleOperator)
	junior := env.seedUser("junior", "", domain.RoleSergeant)
	pilot := env.seedPilot("Luna", nil)

	// No notes: record ends but no post appears.
	quiet := seedRecord(env, pilot, operator, func(r *domain.BattleRecord) { r.Notes = " " })
	w := env.do("POST", "/api/battle-records/"+quiet.ID.Hex()+"/end", "", env.auth(operator))
	if w.Code != 200 {
		t.Fatalf("end: %d %s", w.Code, w.Body.String())
	}
	if dataMap(t, w)["post_created"] != false {
		t.Fatalf("guarded record produced a post: %s", w.Body.String())
	}
	stored, err := env.Store.FindBattleRecordByID(env.Ctx, quiet.ID)
	if err != nil || stored.Status != domain.RecordStatusEnded {
		t.Fatalf("record not ended: %+v (%v)", stored, err)
	}

	// Zero revenue: same outcome.
	free := seedRecord(env, pilot, operator, func(r *domain.BattleRecord) { r.Revenue = 0 })
	w = env.do("POST", "/api/battle-records/"+free.ID.Hex()+"/end", "", env.auth(operator))
	if w.Code != 200 || dataMap(t, w)["post_created"] != false {
		t.Fatalf("zero revenue: %d %s", w.Code, w.Body.String())
	}

	// Junior staff cannot end records.
	other := seedRecord(env, pilot, operator, nil)
	w = env.do("POST", "/api/battle-records/"+other.ID.Hex()+"/end", "", env.auth(junior))
	if w.Code != 403 {
		t.Fatalf("junior end: %d %s", w.Code, w.Body.String())
	}
}

func Test_AutoPost_SystemAuthorFallback(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	operator := env.seedUser("ops", "", domain.RoleOperator)
	system := env.seedUser(domain.SystemUsername, "", domain.RoleOperator)
	pilot := env.seedPilot("Luna", nil) // no owner
	rec := seedRecord(env, pilot, operator, nil)

	w := env.do("POST", "/api/battle-records/"+rec.ID.Hex()+"/end", "", env.auth(operator))
	if w.Code != 200 {
		t.Fatalf("end: %d %s", w.Code, w.Body.String())
	}
	post := dataMap(t, w)["post"].(map[string]interface{})
	author := post["author"].(map[string]interface{})
	if author["id"] != system.ID.Hex() {
		t.Fatalf("author should be the system account: %v", author)
	}
	if author["display_name"] != "System Auto Post" {
		t.Fatalf("display name = %v", author["display_name"])
	}
}
