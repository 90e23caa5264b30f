package bbs

import (
	"sort"

	"github.com/lacus-ops/bbs-service/internal/domain"
)

// ReplyNode is one top-level reply with its direct children.
type ReplyNode struct {
	Reply    domain.Reply
	Children []domain.Reply
}

// BuildReplyTree partitions an already visibility-filtered flat reply list
// into a two-level tree. Children whose parent was filtered out or is
// missing are dropped; both levels sort ascending by creation time.
func BuildReplyTree(replies []domain.Reply) []ReplyNode {
	index := make(map[string]int)
	nodes := make([]ReplyNode, 0, len(replies))
	for _, r := range replies {
		if !r.IsTopLevel() {
			continue
		}
		index[r.ID.Hex()] = len(nodes)
		nodes = append(nodes, ReplyNode{Reply: r})
	}
	for _, r := range replies {
		if r.IsTopLevel() {
			continue
		}
		i, ok := index[r.ParentReplyID.Hex()]
		if !ok {
			continue
		}
		nodes[i].Children = append(nodes[i].Children, r)
	}

	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Reply.CreatedAt.Before(nodes[j].Reply.CreatedAt)
	})
	for i := range nodes {
		children := nodes[i].Children
		sort.SliceStable(children, func(a, b int) bool {
			return children[a].CreatedAt.Before(children[b].CreatedAt)
		})
	}
	return nodes
}
