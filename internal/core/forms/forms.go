// Package forms holds the pure form validators for the public and admin
// surfaces. Each Parse function takes raw form input and returns either a
// normalized draft or an ordered list of field errors; none of them performs
// I/O.
package forms

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sirpyerre/portfolio-api/internal/core/domain"
)

var validate = validator.New()

// FieldError is a single validation failure keyed by form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is an ordered list of field errors. It implements error so
// services can return it through their normal error path.
type ValidationErrors []FieldError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return strings.Join(msgs, "; ")
}

func (ve *ValidationErrors) add(field, message string) {
	*ve = append(*ve, FieldError{Field: field, Message: message})
}

// orNil converts an empty list to a nil error so callers can use the
// idiomatic err != nil check.
func (ve ValidationErrors) orNil() error {
	if len(ve) == 0 {
		return nil
	}
	return ve
}

// --- Auth ---

type AuthForm struct {
	Email    string
	Password string
}

// ParseAuth validates credentials for sign-in and sign-up.
func ParseAuth(f AuthForm) (AuthForm, error) {
	var ve ValidationErrors

	f.Email = strings.TrimSpace(f.Email)
	if f.Email == "" {
		ve.add("email", "email is required")
	} else if validate.Var(f.Email, "email") != nil {
		ve.add("email", "email must be a valid email")
	}
	if len(f.Password) < 6 {
		ve.add("password", "password must be at least 6 characters")
	}

	return f, ve.orNil()
}

// --- Project ---

// ProjectForm is the raw admin form. Technologies arrives as comma-separated
// text; IsPublished is a pointer so "unspecified" can default to true.
type ProjectForm struct {
	Title        string
	Description  string
	Technologies string
	Icon         string
	DemoURL      string
	RepoURL      string
	SortOrder    int
	IsPublished  *bool
}

// ParseProject validates and normalizes a project draft. Id and timestamps
// are left for the service to assign.
func ParseProject(f ProjectForm) (domain.Project, error) {
	var ve ValidationErrors

	title := strings.TrimSpace(f.Title)
	if n := len([]rune(title)); n < 1 || n > 100 {
		ve.add("title", "title must be between 1 and 100 characters")
	}
	description := strings.TrimSpace(f.Description)
	if n := len([]rune(description)); n < 1 || n > 500 {
		ve.add("description", "description must be between 1 and 500 characters")
	}

	technologies := SplitTechnologies(f.Technologies)
	if len(technologies) == 0 {
		ve.add("technologies", "at least one technology is required")
	}

	icon := strings.TrimSpace(f.Icon)
	if icon == "" {
		icon = domain.DefaultProjectIcon
	}

	checkURL(&ve, "demo_url", f.DemoURL)
	checkURL(&ve, "repo_url", f.RepoURL)

	if f.SortOrder < 0 {
		ve.add("sort_order", "sort order must be a non-negative integer")
	}

	if err := ve.orNil(); err != nil {
		return domain.Project{}, err
	}

	published := true
	if f.IsPublished != nil {
		published = *f.IsPublished
	}

	return domain.Project{
		Title:        title,
		Description:  description,
		Technologies: technologies,
		Icon:         icon,
		DemoURL:      strings.TrimSpace(f.DemoURL),
		RepoURL:      strings.TrimSpace(f.RepoURL),
		SortOrder:    f.SortOrder,
		IsPublished:  published,
	}, nil
}

// CheckProject validates a full project record. Used after merging a patch
// into the stored record, where the result must still satisfy every invariant.
func CheckProject(p domain.Project) error {
	var ve ValidationErrors

	if n := len([]rune(p.Title)); n < 1 || n > 100 {
		ve.add("title", "title must be between 1 and 100 characters")
	}
	if n := len([]rune(p.Description)); n < 1 || n > 500 {
		ve.add("description", "description must be between 1 and 500 characters")
	}
	if p.Icon == "" {
		ve.add("icon", "icon is required")
	}
	if p.IsPublished && len(p.Technologies) == 0 {
		ve.add("technologies", "published projects need at least one technology")
	}
	checkURL(&ve, "demo_url", p.DemoURL)
	checkURL(&ve, "repo_url", p.RepoURL)
	if p.SortOrder < 0 {
		ve.add("sort_order", "sort order must be a non-negative integer")
	}

	return ve.orNil()
}

// SplitTechnologies parses comma-separated text into an ordered list of
// trimmed, non-empty tags. "React, TypeScript, " yields ["React","TypeScript"].
func SplitTechnologies(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// --- Article ---

type ArticleForm struct {
	Title       string
	Excerpt     string
	Content     string
	Category    string
	ReadTime    string
	URL         string
	SortOrder   int
	IsPublished *bool
}

// ParseArticle validates and normalizes an article draft.
func ParseArticle(f ArticleForm) (domain.Article, error) {
	var ve ValidationErrors

	title := strings.TrimSpace(f.Title)
	if n := len([]rune(title)); n < 1 || n > 200 {
		ve.add("title", "title must be between 1 and 200 characters")
	}
	excerpt := strings.TrimSpace(f.Excerpt)
	if n := len([]rune(excerpt)); n < 1 || n > 500 {
		ve.add("excerpt", "excerpt must be between 1 and 500 characters")
	}

	category := domain.Category(strings.TrimSpace(f.Category))
	if category == "" {
		category = domain.DefaultCategory
	} else if !category.IsValid() {
		ve.add("category", fmt.Sprintf("category must be one of: %v", domain.Categories()))
	}

	readTime := strings.TrimSpace(f.ReadTime)
	if readTime == "" {
		readTime = domain.DefaultReadTime
	}

	checkURL(&ve, "url", f.URL)

	if f.SortOrder < 0 {
		ve.add("sort_order", "sort order must be a non-negative integer")
	}

	if err := ve.orNil(); err != nil {
		return domain.Article{}, err
	}

	published := true
	if f.IsPublished != nil {
		published = *f.IsPublished
	}

	return domain.Article{
		Title:       title,
		Excerpt:     excerpt,
		Content:     strings.TrimSpace(f.Content),
		Category:    category,
		ReadTime:    readTime,
		URL:         strings.TrimSpace(f.URL),
		SortOrder:   f.SortOrder,
		IsPublished: published,
	}, nil
}

// CheckArticle validates a full article record after a patch merge.
func CheckArticle(a domain.Article) error {
	var ve ValidationErrors

	if n := len([]rune(a.Title)); n < 1 || n > 200 {
		ve.add("title", "title must be between 1 and 200 characters")
	}
	if n := len([]rune(a.Excerpt)); n < 1 || n > 500 {
		ve.add("excerpt", "excerpt must be between 1 and 500 characters")
	}
	if !a.Category.IsValid() {
		ve.add("category", fmt.Sprintf("category must be one of: %v", domain.Categories()))
	}
	if a.ReadTime == "" {
		ve.add("read_time", "read time is required")
	}
	checkURL(&ve, "url", a.URL)
	if a.SortOrder < 0 {
		ve.add("sort_order", "sort order must be a non-negative integer")
	}

	return ve.orNil()
}

// --- Comment ---

type CommentForm struct {
	AuthorName string
	Content    string
}

// ParseComment validates a public comment submission. Lengths are measured
// after trimming; 2 and 50 (name) and 5 and 1000 (content) are inclusive.
func ParseComment(f CommentForm) (CommentForm, error) {
	var ve ValidationErrors

	f.AuthorName = strings.TrimSpace(f.AuthorName)
	if n := len([]rune(f.AuthorName)); n < 2 || n > 50 {
		ve.add("author_name", "name must be between 2 and 50 characters")
	}
	f.Content = strings.TrimSpace(f.Content)
	if n := len([]rune(f.Content)); n < 5 || n > 1000 {
		ve.add("content", "comment must be between 5 and 1000 characters")
	}

	return f, ve.orNil()
}

// checkURL accepts an empty value; a non-empty value must be a well-formed URL.
func checkURL(ve *ValidationErrors, field, raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	if validate.Var(raw, "url") != nil {
		ve.add(field, field+" must be a valid URL")
	}
}
