// Package comment creates, edits and deletes discussion comments as the
// signed-in user. Authorization is left to GitHub.
package comment

import (
	"context"
	"fmt"
	"strings"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/comment-gateway/internal/discussion"
	"github.com/openkcm/comment-gateway/internal/github"
	"github.com/openkcm/comment-gateway/internal/serviceerr"
)

var (
	ErrPostFailed   = serviceerr.ErrUpstreamFailure.WithDescription("Failed to post comment.")
	ErrEditFailed   = serviceerr.ErrUpstreamFailure.WithDescription("Failed to update comment.")
	ErrDeleteFailed = serviceerr.ErrUpstreamFailure.WithDescription("Failed to delete comment.")
)

type Mutator interface {
	AddComment(ctx context.Context, token string, in github.AddCommentInput) (*github.Comment, error)
	UpdateComment(ctx context.Context, token, commentID, body string) (*github.Comment, error)
	DeleteComment(ctx context.Context, token, commentID string) error
}

type CreateRequest struct {
	DiscussionID string `json:"discussionId"`
	Body         string `json:"body"`
	ReplyToID    string `json:"replyToId,omitempty"`
}

type EditRequest struct {
	CommentID string `json:"commentId"`
	Body      string `json:"body"`
}

type DeleteRequest struct {
	CommentID string `json:"commentId"`
}

type Edited struct {
	ID       string `json:"id"`
	BodyHTML string `json:"bodyHTML"`
}

type Service struct {
	mutator Mutator
}

func NewService(mutator Mutator) *Service {
	return &Service{mutator: mutator}
}

func (s *Service) Create(ctx context.Context, token string, req CreateRequest) (discussion.Comment, error) {
	if token == "" {
		return discussion.Comment{}, serviceerr.ErrUnauthorized
	}
	if isBlank(req.DiscussionID) || isBlank(req.Body) {
		return discussion.Comment{}, serviceerr.ErrInvalidRequest.WithDescription("Discussion ID and comment body are required.")
	}

	ctx = slogctx.With(ctx, "discussionId", req.DiscussionID)

	created, err := s.mutator.AddComment(ctx, token, github.AddCommentInput{
		DiscussionID: req.DiscussionID,
		Body:         req.Body,
		ReplyToID:    req.ReplyToID,
	})
	if err != nil {
		return discussion.Comment{}, providerError(ctx, "post", ErrPostFailed, err)
	}

	slogctx.Info(ctx, "Posted comment", "commentId", created.ID, "reply", req.ReplyToID != "")

	return discussion.NewComment(*created), nil
}

func (s *Service) Edit(ctx context.Context, token string, req EditRequest) (Edited, error) {
	if token == "" {
		return Edited{}, serviceerr.ErrUnauthorized
	}
	if isBlank(req.CommentID) || isBlank(req.Body) {
		return Edited{}, serviceerr.ErrInvalidRequest.WithDescription("Comment ID and body are required.")
	}

	ctx = slogctx.With(ctx, "commentId", req.CommentID)

	updated, err := s.mutator.UpdateComment(ctx, token, req.CommentID, req.Body)
	if err != nil {
		return Edited{}, providerError(ctx, "update", ErrEditFailed, err)
	}

	return Edited{ID: updated.ID, BodyHTML: updated.BodyHTML}, nil
}

func (s *Service) Delete(ctx context.Context, token string, req DeleteRequest) error {
	if token == "" {
		return serviceerr.ErrUnauthorized
	}
	if isBlank(req.CommentID) {
		return serviceerr.ErrInvalidRequest.WithDescription("Comment ID is required.")
	}

	ctx = slogctx.With(ctx, "commentId", req.CommentID)

	if err := s.mutator.DeleteComment(ctx, token, req.CommentID); err != nil {
		return providerError(ctx, "delete", ErrDeleteFailed, err)
	}

	slogctx.Info(ctx, "Deleted comment")

	return nil
}

// providerError logs the provider failure and hides it behind a generic
// error, except for a rejected token which ends the session.
func providerError(ctx context.Context, op string, generic *serviceerr.Error, err error) error {
	if github.IsUnauthorized(err) {
		slogctx.Info(ctx, "GitHub rejected the session token", "operation", op)
		return serviceerr.ErrSessionExpired
	}

	slogctx.Error(ctx, "Comment mutation failed", "operation", op, "error", err)
	return fmt.Errorf("%w: %w", generic, err)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
