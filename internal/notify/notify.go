package notify

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lacus-ops/bbs-service/internal/domain"
	"github.com/lacus-ops/bbs-service/internal/log"
	"github.com/lacus-ops/bbs-service/internal/mail"
	"github.com/lacus-ops/bbs-service/internal/metrics"
)

const (
	replySummaryLimit = 160
	notesSummaryLimit = 300
)

// Notifier renders and dispatches the three BBS mail digests. Dispatch is
// best-effort: failures are logged and never surfaced to the caller.
type Notifier struct {
	Sender  mail.Sender
	BaseURL string
	Loc     *time.Location
}

func New(sender mail.Sender, baseURL string, loc *time.Location) *Notifier {
	return &Notifier{Sender: sender, BaseURL: baseURL, Loc: loc}
}

// resolveEmail fails closed: inactive account or missing address means no send.
func resolveEmail(u *domain.User) string {
	if u == nil || !u.Active {
		return ""
	}
	return u.Email
}

// sliceText condenses whitespace and truncates to limit with an ellipsis.
func sliceText(content string, limit int) string {
	condensed := strings.Join(strings.Fields(content), " ")
	if condensed == "" {
		return "(no content)"
	}
	runes := []rune(condensed)
	if len(runes) <= limit {
		return condensed
	}
	cut := limit - 3
	if cut < 0 {
		cut = 0
	}
	return string(runes[:cut]) + "..."
}

func displayName(s domain.AuthorSnapshot, fallback string) string {
	for _, v := range []string{s.DisplayName, s.Nickname, s.Username} {
		if v != "" {
			return v
		}
	}
	return fallback
}

func (n *Notifier) buildLink(path string) string {
	base := strings.TrimRight(n.BaseURL, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

func (n *Notifier) formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown time"
	}
	return t.In(n.Loc).Format("2006-01-02 15:04")
}

func (n *Notifier) send(recipients []string, subject, body string) {
	uniq := map[string]struct{}{}
	for _, r := range recipients {
		if r != "" {
			uniq[r] = struct{}{}
		}
	}
	if len(uniq) == 0 {
		return
	}
	to := make([]string, 0, len(uniq))
	for r := range uniq {
		to = append(to, r)
	}
	sort.Strings(to)
	if err := n.Sender.Send(to, subject, body); err != nil {
		metrics.MailSendFailures.Inc()
		log.L().Warn("bbs mail dispatch failed",
			zap.String("subject", subject),
			zap.Strings("recipients", to),
			zap.Error(err),
		)
	}
}

// PostAuthorNewReply mails the post author about a new reply. Self-replies
// are suppressed.
func (n *Notifier) PostAuthorNewReply(board *domain.Board, post *domain.Post, postAuthor *domain.User, reply *domain.Reply, parent *domain.Reply) {
	recipient := resolveEmail(postAuthor)
	if recipient == "" {
		return
	}
	if post.AuthorID == reply.AuthorID {
		return
	}

	boardName := "unknown board"
	if board != nil {
		boardName = board.Name
	}
	lines := []string{
		"### New reply on your post",
		fmt.Sprintf("- Board: %s", boardName),
		fmt.Sprintf("- Post: %s", post.Title),
		fmt.Sprintf("- %s @ %s", displayName(reply.Author, "unknown user"), n.formatTime(reply.CreatedAt)),
	}
	if parent != nil {
		lines = append(lines, fmt.Sprintf("- In reply to: %s", displayName(parent.Author, "unspecified")))
	}
	lines = append(lines,
		"",
		"### Reply summary",
		fmt.Sprintf("> %s", sliceText(reply.Content, replySummaryLimit)),
		"",
		"### Quick links",
		fmt.Sprintf("- [Open post](%s)", n.buildLink("/bbs/posts/"+post.ID.Hex())),
	)

	n.send([]string{recipient}, "[Lacus BBS] Someone replied to your post", strings.Join(lines, "\n"))
}

// ParentReplyAuthor mails the author of the parent reply. Suppressed when
// they replied to themselves, or when they are also the post author (the
// post-author digest already covers them).
func (n *Notifier) ParentReplyAuthor(board *domain.Board, post *domain.Post, parent *domain.Reply, parentAuthor *domain.User, reply *domain.Reply) {
	recipient := resolveEmail(parentAuthor)
	if recipient == "" {
		return
	}
	if parent.AuthorID == reply.AuthorID {
		return
	}
	if parent.AuthorID == post.AuthorID {
		return
	}

	boardName := "unknown board"
	if board != nil {
		boardName = board.Name
	}
	lines := []string{
		"### Your reply got a response",
		fmt.Sprintf("- Board: %s", boardName),
		fmt.Sprintf("- Post: %s", post.Title),
		fmt.Sprintf("- %s @ %s", n.formatTime(reply.CreatedAt), displayName(reply.Author, "unknown user")),
		"",
		"### Response summary",
		fmt.Sprintf("> %s", sliceText(reply.Content, replySummaryLimit)),
		"",
		"### What you wrote",
		fmt.Sprintf("> %s", sliceText(parent.Content, replySummaryLimit)),
		"",
		"### Quick links",
		fmt.Sprintf("- [Open post](%s)", n.buildLink("/bbs/posts/"+post.ID.Hex())),
	}

	n.send([]string{recipient}, "[Lacus BBS] Your reply received new feedback", strings.Join(lines, "\n"))
}

// AutoPostCreated mails the pilot's owner when the generator publishes a
// post for an ended battle record.
func (n *Notifier) AutoPostCreated(rec *domain.BattleRecord, pilot *domain.Pilot, owner *domain.User, board *domain.Board, post *domain.Post) {
	recipient := resolveEmail(owner)
	if recipient == "" {
		return
	}

	pilotName := pilot.DisplayName()
	if pilotName == "" {
		pilotName = "unknown pilot"
	}
	boardName := "unknown board"
	if board != nil {
		boardName = board.Name
	}
	lines := []string{
		"### Auto-generated post",
		fmt.Sprintf("- Pilot: %s", pilotName),
		fmt.Sprintf("- Board: %s", boardName),
		fmt.Sprintf("- Stream start: %s", n.formatTime(rec.StartTime)),
		fmt.Sprintf("- Revenue: ¥%.2f", rec.Revenue),
		fmt.Sprintf("- Base salary: ¥%.2f", rec.BaseSalary),
		"- Triggered because the record carries notes",
		"",
		"### Notes summary",
		fmt.Sprintf("> %s", sliceText(rec.Notes, notesSummaryLimit)),
		"",
		"### Quick links",
		fmt.Sprintf("- [Open post](%s)", n.buildLink("/bbs/posts/"+post.ID.Hex())),
		fmt.Sprintf("- [Open battle record](%s)", n.buildLink("/battle-records/"+rec.ID.Hex())),
	}

	n.send([]string{recipient}, "[Lacus BBS] New auto-generated post for your pilot", strings.Join(lines, "\n"))
}
