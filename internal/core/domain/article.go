package domain

import "time"

// Category classifies an article. The set is fixed; anything outside it is
// rejected at validation time.
type Category string

const (
	CategoryGeneral  Category = "Geral"
	CategoryFrontend Category = "Frontend"
	CategoryBackend  Category = "Backend"
	CategoryDevOps   Category = "DevOps"
	CategoryCareer   Category = "Carreira"
)

const (
	DefaultCategory = CategoryGeneral
	DefaultReadTime = "5 min"
)

var categories = []Category{
	CategoryGeneral,
	CategoryFrontend,
	CategoryBackend,
	CategoryDevOps,
	CategoryCareer,
}

// Categories returns the fixed category set in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// IsValid reports whether c belongs to the fixed category set.
func (c Category) IsValid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// Article is a blog entry. Content may be empty when the article only links
// out to an external URL.
type Article struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Title       string    `json:"title" bson:"title"`
	Excerpt     string    `json:"excerpt" bson:"excerpt"`
	Content     string    `json:"content,omitempty" bson:"content,omitempty"`
	Category    Category  `json:"category" bson:"category"`
	ReadTime    string    `json:"read_time" bson:"read_time"`
	URL         string    `json:"url,omitempty" bson:"url,omitempty"`
	SortOrder   int       `json:"sort_order" bson:"sort_order"`
	IsPublished bool      `json:"is_published" bson:"is_published"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

func (a Article) Key() string     { return a.ID }
func (a Article) Order() int      { return a.SortOrder }
func (a Article) Published() bool { return a.IsPublished }

// Stamped returns a copy with identity and creation metadata assigned.
func (a Article) Stamped(id string, now time.Time) Article {
	a.ID = id
	a.CreatedAt = now
	a.UpdatedAt = now
	return a
}

// Touched returns a copy with the update timestamp bumped.
func (a Article) Touched(now time.Time) Article {
	a.UpdatedAt = now
	return a
}
