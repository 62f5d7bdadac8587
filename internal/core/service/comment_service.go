package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/portfolio-api/internal/core/domain"
	"github.com/sirpyerre/portfolio-api/internal/core/forms"
	"github.com/sirpyerre/portfolio-api/internal/core/ports"
)

// CommentService is the stateless request/response side of comments: list,
// public submission, and admin deletion. Live views are CommentStream's job.
type CommentService struct {
	repo ports.CommentRepository
	log  zerolog.Logger
}

func NewCommentService(repo ports.CommentRepository, log zerolog.Logger) *CommentService {
	return &CommentService{repo: repo, log: log}
}

// ListByArticle returns an article's comments, newest first.
func (s *CommentService) ListByArticle(ctx context.Context, articleID string) ([]domain.Comment, error) {
	comments, err := s.repo.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Submit validates and inserts a public comment submission.
func (s *CommentService) Submit(ctx context.Context, articleID string, form forms.CommentForm) (*domain.Comment, error) {
	comment, err := submitComment(ctx, s.repo, articleID, form)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("article_id", articleID).Str("comment_id", comment.ID).Msg("comment submitted")
	return comment, nil
}

// Delete removes a comment. Store policy makes this admin-only; the route is
// always behind the strict admin gate regardless of the configured gate mode.
func (s *CommentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	s.log.Info().Str("comment_id", id).Msg("comment deleted")
	return nil
}
