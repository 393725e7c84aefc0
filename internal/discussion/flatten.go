package discussion

import (
	"time"

	"github.com/openkcm/comment-gateway/internal/github"
)

// Comment is one entry of the flat comment list. A comment without ReplyTo
// is top-level.
type Comment struct {
	ID              string             `json:"id"`
	Author          *github.Actor      `json:"author"`
	BodyHTML        string             `json:"bodyHTML"`
	CreatedAt       time.Time          `json:"createdAt"`
	ViewerCanUpdate bool               `json:"viewerCanUpdate"`
	ViewerCanDelete bool               `json:"viewerCanDelete"`
	ReplyTo         *github.CommentRef `json:"replyTo,omitempty"`
}

// Flatten turns the two-level comment tree into one list: each top-level
// comment followed by its replies, sibling order preserved. Replies that
// come without a parent reference point at the thread they were listed in.
func Flatten(threads []github.Thread) []Comment {
	n := len(threads)
	for _, t := range threads {
		n += len(t.Replies.Nodes)
	}

	out := make([]Comment, 0, n)
	for _, t := range threads {
		out = append(out, NewComment(t.Comment))
		for _, reply := range t.Replies.Nodes {
			c := NewComment(reply)
			if c.ReplyTo == nil || c.ReplyTo.ID == "" {
				c.ReplyTo = &github.CommentRef{ID: t.ID}
			}
			out = append(out, c)
		}
	}

	return out
}

// NewComment converts a single API comment.
func NewComment(node github.Comment) Comment {
	c := Comment{
		ID:              node.ID,
		Author:          node.Author,
		BodyHTML:        node.BodyHTML,
		CreatedAt:       node.CreatedAt,
		ViewerCanUpdate: node.ViewerCanUpdate,
		ViewerCanDelete: node.ViewerCanDelete,
	}
	if node.ReplyTo != nil {
		c.ReplyTo = &github.CommentRef{ID: node.ReplyTo.ID}
	}
	return c
}
