package domain

import "time"

// DefaultProjectIcon is applied when a draft carries no icon.
const DefaultProjectIcon = "📁"

// Project is a portfolio entry shown on the public site and managed
// through the admin surface.
type Project struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Title        string    `json:"title" bson:"title"`
	Description  string    `json:"description" bson:"description"`
	Technologies []string  `json:"technologies" bson:"technologies"`
	Icon         string    `json:"icon" bson:"icon"`
	DemoURL      string    `json:"demo_url,omitempty" bson:"demo_url,omitempty"`
	RepoURL      string    `json:"repo_url,omitempty" bson:"repo_url,omitempty"`
	SortOrder    int       `json:"sort_order" bson:"sort_order"`
	IsPublished  bool      `json:"is_published" bson:"is_published"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

func (p Project) Key() string     { return p.ID }
func (p Project) Order() int      { return p.SortOrder }
func (p Project) Published() bool { return p.IsPublished }

// Stamped returns a copy with identity and creation metadata assigned.
func (p Project) Stamped(id string, now time.Time) Project {
	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now
	return p
}

// Touched returns a copy with the update timestamp bumped.
func (p Project) Touched(now time.Time) Project {
	p.UpdatedAt = now
	return p
}

// Entity is the constraint shared by Project and Article: anything with an
// opaque id, an explicit display order, and a published flag.
type Entity interface {
	Key() string
	Order() int
	Published() bool
}

// Record is the self-referential constraint used by the generic content
// service: an Entity that can stamp its own identity metadata.
type Record[T Entity] interface {
	Entity
	Stamped(id string, now time.Time) T
	Touched(now time.Time) T
}
