package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/deskboard/internal/apperror"
	"github.com/sakif/deskboard/internal/docstore"
	"github.com/sakif/deskboard/internal/model"
)

const articlesPath = "articles"

// emptyArticleMessage is shown when either article field is blank.
const emptyArticleMessage = "Title and Content cannot be empty!"

// Author identifies who is writing. Handlers build it from the session.
type Author struct {
	ID    string
	Email string
}

// ArticleService manages the global articles collection.
//
// Articles are stored together at articles/{id} but every read here is
// filtered to one author, and only the author may change or delete their
// own articles.
type ArticleService struct {
	store  DocumentStore
	logger *slog.Logger
}

func NewArticleService(store DocumentStore, logger *slog.Logger) *ArticleService {
	return &ArticleService{store: store, logger: logger}
}

// validateArticle trims both fields in place. It runs before any store call,
// so an invalid form never reaches storage.
func validateArticle(in *model.ArticleInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if in.Title == "" {
		return apperror.ValidationFailed("title", emptyArticleMessage)
	}
	if in.Content == "" {
		return apperror.ValidationFailed("content", emptyArticleMessage)
	}
	return nil
}

// Save creates a new article when id is empty and updates article id
// otherwise. This is what the dashboard form submits.
func (s *ArticleService) Save(ctx context.Context, author Author, id string, in model.ArticleInput) (*model.Article, error) {
	if id == "" {
		return s.Create(ctx, author, in)
	}
	return s.Update(ctx, author, id, in)
}

// Create pushes a new article owned by author.
func (s *ArticleService) Create(ctx context.Context, author Author, in model.ArticleInput) (*model.Article, error) {
	if err := validateArticle(&in); err != nil {
		return nil, err
	}

	created := now()
	id, err := s.store.Push(ctx, articlesPath, map[string]any{
		"title":       in.Title,
		"content":     in.Content,
		"authorId":    author.ID,
		"authorEmail": author.Email,
		"createdAt":   timestamp(created),
	})
	if err != nil {
		return nil, fmt.Errorf("service/article: creating article: %w", err)
	}

	s.logger.Info("article created", slog.String("id", id), slog.String("author", author.ID))

	return &model.Article{
		ID:          id,
		Title:       in.Title,
		Content:     in.Content,
		AuthorID:    author.ID,
		AuthorEmail: author.Email,
		CreatedAt:   created,
	}, nil
}

// Update changes title and content in place. The key is reused, so editing
// never leaves a second copy behind.
func (s *ArticleService) Update(ctx context.Context, author Author, id string, in model.ArticleInput) (*model.Article, error) {
	if err := validateArticle(&in); err != nil {
		return nil, err
	}

	article, err := s.owned(ctx, author, id)
	if err != nil {
		return nil, err
	}

	updated := now()
	err = s.store.Update(ctx, docstore.Join(articlesPath, id), map[string]any{
		"title":     in.Title,
		"content":   in.Content,
		"updatedAt": timestamp(updated),
	})
	if err != nil {
		return nil, fmt.Errorf("service/article: updating article %s: %w", id, err)
	}

	article.Title = in.Title
	article.Content = in.Content
	article.UpdatedAt = &updated
	return article, nil
}

// Delete removes one of the author's own articles.
func (s *ArticleService) Delete(ctx context.Context, author Author, id string) error {
	if _, err := s.owned(ctx, author, id); err != nil {
		return err
	}
	if err := s.store.Remove(ctx, docstore.Join(articlesPath, id)); err != nil {
		return fmt.Errorf("service/article: deleting article %s: %w", id, err)
	}
	s.logger.Info("article deleted", slog.String("id", id), slog.String("author", author.ID))
	return nil
}

// Get returns any article by id.
func (s *ArticleService) Get(ctx context.Context, id string) (*model.Article, error) {
	if !validID(id) {
		return nil, apperror.NotFound("article", id)
	}

	snap, err := s.store.Get(ctx, docstore.Join(articlesPath, id))
	if err != nil {
		return nil, fmt.Errorf("service/article: getting article %s: %w", id, err)
	}
	if !snap.Exists() {
		return nil, apperror.NotFound("article", id)
	}

	article, err := decodeArticle(snap)
	if err != nil {
		return nil, fmt.Errorf("service/article: %w", err)
	}
	return article, nil
}

// List returns the author's articles in creation order.
func (s *ArticleService) List(ctx context.Context, authorID string) ([]model.Article, error) {
	snap, err := s.store.Get(ctx, articlesPath)
	if err != nil {
		return nil, fmt.Errorf("service/article: listing articles: %w", err)
	}
	return s.filterByAuthor(snap, authorID), nil
}

// Watch streams the author's article list, re-sent after every change to
// the collection. The stream ends when ctx is done.
func (s *ArticleService) Watch(ctx context.Context, authorID string) (<-chan []model.Article, error) {
	snaps, err := s.store.Watch(ctx, articlesPath)
	if err != nil {
		return nil, fmt.Errorf("service/article: watching articles: %w", err)
	}
	return mapStream(ctx, snaps, func(snap docstore.Snapshot) ([]model.Article, bool) {
		return s.filterByAuthor(snap, authorID), true
	}), nil
}

// owned loads article id and checks that author wrote it.
func (s *ArticleService) owned(ctx context.Context, author Author, id string) (*model.Article, error) {
	article, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if article.AuthorID != author.ID {
		return nil, apperror.Forbidden("You can only change your own articles.")
	}
	return article, nil
}

// filterByAuthor never returns nil, so an empty list encodes as [].
func (s *ArticleService) filterByAuthor(snap docstore.Snapshot, authorID string) []model.Article {
	articles := []model.Article{}
	for _, child := range snap.Children() {
		article, err := decodeArticle(child)
		if err != nil {
			s.logger.Warn("skipping malformed article", slog.String("path", child.Path), slog.Any("error", err))
			continue
		}
		if article.AuthorID == authorID {
			articles = append(articles, *article)
		}
	}
	return articles
}

func decodeArticle(snap docstore.Snapshot) (*model.Article, error) {
	var a model.Article
	if err := snap.Decode(&a); err != nil {
		return nil, err
	}
	a.ID = snap.Key()
	return &a, nil
}
