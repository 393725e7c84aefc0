package github

import (
	"context"
	"fmt"
	"strings"
)

const viewerQuery = `query { viewer { login avatarUrl } }`

const commentFields = `
  id
  author { login avatarUrl }
  bodyHTML
  createdAt
  viewerCanUpdate
  viewerCanDelete
  replyTo { id }`

const searchDiscussionQuery = `query($searchQuery: String!) {
  search(query: $searchQuery, type: DISCUSSION, first: 1) {
    nodes {
      ... on Discussion {
        id
        url
        title
        comments(first: 100) {
          nodes {` + commentFields + `
            replies(first: 100) {
              nodes {` + commentFields + `
              }
            }
          }
        }
      }
    }
  }
}`

const addCommentMutation = `mutation($discussionId: ID!, $body: String!, $replyToId: ID) {
  addDiscussionComment(input: {discussionId: $discussionId, body: $body, replyToId: $replyToId}) {
    comment {` + commentFields + `
    }
  }
}`

const updateCommentMutation = `mutation($commentId: ID!, $body: String!) {
  updateDiscussionComment(input: {commentId: $commentId, body: $body}) {
    comment { id bodyHTML }
  }
}`

const deleteCommentMutation = `mutation($id: ID!) {
  deleteDiscussionComment(input: {id: $id}) {
    comment { id }
  }
}`

// SearchQuery builds the search expression that matches a discussion by title
// within one repository. Double quotes in the title would end the phrase and
// are dropped.
func SearchQuery(owner, repo, title string) string {
	return fmt.Sprintf(`repo:%s/%s in:title "%s"`, owner, repo, strings.ReplaceAll(title, `"`, ""))
}

// Viewer returns the identity behind token. A nil actor without error means
// the API answered but did not return a viewer.
func (c *Client) Viewer(ctx context.Context, token string) (*Actor, error) {
	var data struct {
		Viewer *Actor `json:"viewer"`
	}
	if err := c.do(ctx, token, viewerQuery, nil, &data); err != nil {
		return nil, err
	}
	return data.Viewer, nil
}

// SearchDiscussion returns the first discussion matching the search
// expression or nil when there is none.
func (c *Client) SearchDiscussion(ctx context.Context, token, searchQuery string) (*Discussion, error) {
	var data struct {
		Search struct {
			Nodes []*Discussion `json:"nodes"`
		} `json:"search"`
	}
	err := c.do(ctx, token, searchDiscussionQuery, map[string]any{"searchQuery": searchQuery}, &data)
	if err != nil {
		return nil, err
	}

	for _, node := range data.Search.Nodes {
		// Non-discussion hits decode as empty objects.
		if node != nil && node.ID != "" {
			return node, nil
		}
	}
	return nil, nil
}

func (c *Client) AddComment(ctx context.Context, token string, in AddCommentInput) (*Comment, error) {
	vars := map[string]any{
		"discussionId": in.DiscussionID,
		"body":         in.Body,
	}
	if in.ReplyToID != "" {
		vars["replyToId"] = in.ReplyToID
	}

	var data struct {
		AddDiscussionComment *struct {
			Comment *Comment `json:"comment"`
		} `json:"addDiscussionComment"`
	}
	if err := c.do(ctx, token, addCommentMutation, vars, &data); err != nil {
		return nil, err
	}
	if data.AddDiscussionComment == nil || data.AddDiscussionComment.Comment == nil {
		return nil, ErrMalformedResponse
	}
	return data.AddDiscussionComment.Comment, nil
}

func (c *Client) UpdateComment(ctx context.Context, token, commentID, body string) (*Comment, error) {
	var data struct {
		UpdateDiscussionComment *struct {
			Comment *Comment `json:"comment"`
		} `json:"updateDiscussionComment"`
	}
	vars := map[string]any{"commentId": commentID, "body": body}
	if err := c.do(ctx, token, updateCommentMutation, vars, &data); err != nil {
		return nil, err
	}
	if data.UpdateDiscussionComment == nil || data.UpdateDiscussionComment.Comment == nil {
		return nil, ErrMalformedResponse
	}
	return data.UpdateDiscussionComment.Comment, nil
}

func (c *Client) DeleteComment(ctx context.Context, token, commentID string) error {
	var data struct {
		DeleteDiscussionComment *struct {
			Comment *struct {
				ID string `json:"id"`
			} `json:"comment"`
		} `json:"deleteDiscussionComment"`
	}
	if err := c.do(ctx, token, deleteCommentMutation, map[string]any{"id": commentID}, &data); err != nil {
		return err
	}
	if data.DeleteDiscussionComment == nil {
		return ErrMalformedResponse
	}
	return nil
}
