package bbs

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lacus-ops/bbs-service/internal/domain"
)

func mkReply(parent *primitive.ObjectID, at time.Time) domain.Reply {
	return domain.Reply{
		ID:            primitive.NewObjectID(),
		PostID:        primitive.NewObjectID(),
		ParentReplyID: parent,
		Status:        domain.StatusPublished,
		CreatedAt:     at,
	}
}

func TestBuildReplyTree(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	second := mkReply(nil, base.Add(2*time.Hour))
	first := mkReply(nil, base)
	childLate := mkReply(&first.ID, base.Add(3*time.Hour))
	childEarly := mkReply(&first.ID, base.Add(time.Hour))

	nodes := BuildReplyTree([]domain.Reply{second, childLate, first, childEarly})
	if len(nodes) != 2 {
		t.Fatalf("top-level count = %d, want 2", len(nodes))
	}
	if nodes[0].Reply.ID != first.ID || nodes[1].Reply.ID != second.ID {
		t.Fatal("top-level replies not sorted by creation time")
	}
	if len(nodes[0].Children) != 2 {
		t.Fatalf("children = %d, want 2", len(nodes[0].Children))
	}
	if nodes[0].Children[0].ID != childEarly.ID {
		t.Fatal("children not sorted by creation time")
	}
	if len(nodes[1].Children) != 0 {
		t.Fatal("second top-level reply should have no children")
	}
}

func TestBuildReplyTree_DropsOrphans(t *testing.T) {
	// Parent was filtered out (hidden); the child must not surface.
	missingParent := primitive.NewObjectID()
	orphan := mkReply(&missingParent, time.Now())
	top := mkReply(nil, time.Now())

	nodes := BuildReplyTree([]domain.Reply{orphan, top})
	if len(nodes) != 1 {
		t.Fatalf("top-level count = %d, want 1", len(nodes))
	}
	if len(nodes[0].Children) != 0 {
		t.Fatal("orphan attached to the wrong parent")
	}
}

func TestBuildReplyTree_Empty(t *testing.T) {
	if nodes := BuildReplyTree(nil); len(nodes) != 0 {
		t.Fatalf("expected empty tree, got %d nodes", len(nodes))
	}
}
