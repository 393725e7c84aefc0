package github

import "time"

type Actor struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatarUrl"`
}

type CommentRef struct {
	ID string `json:"id"`
}

// Comment is a discussion comment or reply as returned by the API.
type Comment struct {
	ID              string      `json:"id"`
	Author          *Actor      `json:"author"`
	BodyHTML        string      `json:"bodyHTML"`
	CreatedAt       time.Time   `json:"createdAt"`
	ViewerCanUpdate bool        `json:"viewerCanUpdate"`
	ViewerCanDelete bool        `json:"viewerCanDelete"`
	ReplyTo         *CommentRef `json:"replyTo"`
}

// Thread is a top-level comment with its direct replies.
type Thread struct {
	Comment

	Replies struct {
		Nodes []Comment `json:"nodes"`
	} `json:"replies"`
}

type Discussion struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	Comments struct {
		Nodes []Thread `json:"nodes"`
	} `json:"comments"`
}

type AddCommentInput struct {
	DiscussionID string
	Body         string
	ReplyToID    string
}
