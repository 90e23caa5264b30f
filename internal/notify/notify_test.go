package notify

import (
	"strings"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lacus-ops/bbs-service/internal/domain"
)

type sentMail struct {
	To      []string
	Subject string
	Body    string
}

type recordSender struct {
	mu   sync.Mutex
	sent []sentMail
}

func (r *recordSender) Send(to []string, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (r *recordSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func (r *recordSender) last() sentMail {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent[len(r.sent)-1]
}

func activeUser(email string) *domain.User {
	return &domain.User{
		ID:       primitive.NewObjectID(),
		Username: "staff",
		Nickname: "Staff",
		Email:    email,
		Active:   true,
	}
}

func TestSliceText(t *testing.T) {
	if got := sliceText("  hello \n  world  ", 100); got != "hello world" {
		t.Fatalf("condense: %q", got)
	}
	if got := sliceText("", 100); got != "(no content)" {
		t.Fatalf("empty: %q", got)
	}
	long := strings.Repeat("ab", 200)
	got := sliceText(long, 20)
	if len([]rune(got)) != 20 || !strings.HasSuffix(got, "...") {
		t.Fatalf("truncate: %q (len %d)", got, len([]rune(got)))
	}
	// Rune-safe on multibyte text.
	cjk := strings.Repeat("测试内容", 100)
	got = sliceText(cjk, 20)
	if len([]rune(got)) != 20 {
		t.Fatalf("cjk truncate: %q", got)
	}
}

func TestPostAuthorNewReply(t *testing.T) {
	rec := &recordSender{}
	n := New(rec, "https://bbs.example.com", time.UTC)

	author := activeUser("author@example.com")
	replier := activeUser("replier@example.com")
	post := &domain.Post{
		ID:       primitive.NewObjectID(),
		Title:    "Shift handover",
		AuthorID: author.ID,
		Author:   domain.NewAuthorSnapshot(author, ""),
	}
	reply := &domain.Reply{
		ID:        primitive.NewObjectID(),
		PostID:    post.ID,
		AuthorID:  replier.ID,
		Author:    domain.NewAuthorSnapshot(replier, ""),
		Content:   "ack, taking over at 22:00",
		CreatedAt: time.Now(),
	}

	n.PostAuthorNewReply(nil, post, author, reply, nil)
	if rec.count() != 1 {
		t.Fatalf("sends = %d, want 1", rec.count())
	}
	msg := rec.last()
	if msg.To[0] != "author@example.com" {
		t.Fatalf("recipient = %v", msg.To)
	}
	if !strings.Contains(msg.Body, "ack, taking over at 22:00") {
		t.Fatalf("body missing reply summary:\n%s", msg.Body)
	}
	if !strings.Contains(msg.Body, post.ID.Hex()) {
		t.Fatal("body missing post link")
	}
}

func TestPostAuthorNewReply_Suppressions(t *testing.T) {
	rec := &recordSender{}
	n := New(rec, "https://bbs.example.com", time.UTC)

	author := activeUser("author@example.com")
	post := &domain.Post{ID: primitive.NewObjectID(), AuthorID: author.ID}

	// Self-reply never notifies.
	selfReply := &domain.Reply{AuthorID: author.ID, Content: "note to self"}
	n.PostAuthorNewReply(nil, post, author, selfReply, nil)

	// Inactive account and missing address fail closed.
	other := activeUser("x@example.com")
	reply := &domain.Reply{AuthorID: other.ID, Content: "hello"}
	inactive := activeUser("gone@example.com")
	inactive.Active = false
	n.PostAuthorNewReply(nil, post, inactive, reply, nil)
	noMail := activeUser("")
	n.PostAuthorNewReply(nil, post, noMail, reply, nil)

	if rec.count() != 0 {
		t.Fatalf("sends = %d, want 0", rec.count())
	}
}

func TestParentReplyAuthor_SuppressedForPostAuthor(t *testing.T) {
	rec := &recordSender{}
	n := New(rec, "https://bbs.example.com", time.UTC)

	postAuthor := activeUser("author@example.com")
	replier := activeUser("replier@example.com")
	post := &domain.Post{ID: primitive.NewObjectID(), AuthorID: postAuthor.ID}

	// Parent written by the post author: the post-author digest covers them.
	parent := &domain.Reply{ID: primitive.NewObjectID(), AuthorID: postAuthor.ID, Content: "first"}
	reply := &domain.Reply{AuthorID: replier.ID, Content: "second"}
	n.ParentReplyAuthor(nil, post, parent, postAuthor, reply)
	if rec.count() != 0 {
		t.Fatalf("sends = %d, want 0", rec.count())
	}

	// A third-party parent author does get the digest.
	third := activeUser("third@example.com")
	parent = &domain.Reply{ID: primitive.NewObjectID(), AuthorID: third.ID, Content: "first"}
	n.ParentReplyAuthor(nil, post, parent, third, reply)
	if rec.count() != 1 {
		t.Fatalf("sends = %d, want 1", rec.count())
	}
	if rec.last().To[0] != "third@example.com" {
		t.Fatalf("recipient = %v", rec.last().To)
	}
}

func TestAutoPostCreated(t *testing.T) {
	rec := &recordSender{}
	n := New(rec, "https://bbs.example.com", time.UTC)

	owner := activeUser("owner@example.com")
	pilot := &domain.Pilot{ID: primitive.NewObjectID(), Nickname: "Luna"}
	record := &domain.BattleRecord{
		ID:         primitive.NewObjectID(),
		Revenue:    980.25,
		BaseSalary: 200,
		Notes:      "good crowd",
		StartTime:  time.Now(),
	}
	post := &domain.Post{ID: primitive.NewObjectID(), Title: "[Stream Log] Luna"}

	n.AutoPostCreated(record, pilot, owner, nil, post)
	if rec.count() != 1 {
		t.Fatalf("sends = %d, want 1", rec.count())
	}
	body := rec.last().Body
	for _, want := range []string{"Luna", "¥980.25", "good crowd", post.ID.Hex(), record.ID.Hex()} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}
