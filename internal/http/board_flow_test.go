package http_test

import (
	"encoding/json"
	"testing"

	"github.com/lacus-ops/bbs-service/internal/domain"
)

func Test_ListBoards_ActiveFilter(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	staff := env.seedUser("alice", "", domain.RoleSergeant)
	env.seedBoard("general", "General")
	retired := &domain.Board{Code: "retired", Name: "Retired", BoardType: domain.BoardTypeCustom, IsActive: false, Order: 20}
	if err := env.Store.InsertBoard(env.Ctx, retired); err != nil {
		t.Fatal(err)
	}

	codes := func(query string) map[string]bool {
		t.Helper()
		w := env.do("GET", "/api/bbs/boards"+query, "", env.auth(staff))
		if w.Code != 200 {
			t.Fatalf("list %q: %d %s", query, w.Code, w.Body.String())
		}
		var items []map[string]interface{}
		if err := json.Unmarshal(decode(t, w).Data, &items); err != nil {
			t.Fatalf("decode %q: %v %s", query, err, w.Body.String())
		}
		out := map[string]bool{}
		for _, b := range items {
			out[b["code"].(string)] = true
		}
		return out
	}

	// Unset lists everything, regular staff included.
	got := codes("")
	if !got["general"] || !got["retired"] {
		t.Fatalf("unfiltered boards: %v", got)
	}

	got = codes("?is_active=true")
	if !got["general"] || got["retired"] {
		t.Fatalf("active boards: %v", got)
	}

	got = codes("?is_active=0")
	if got["general"] || !got["retired"] {
		t.Fatalf("inactive boards: %v", got)
	}

	// Unrecognized values fall back to the full list.
	got = codes("?is_active=maybe")
	if !got["general"] || !got["retired"] {
		t.Fatalf("unrecognized filter: %v", got)
	}
}
