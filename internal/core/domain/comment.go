package domain

import "time"

// Comment is a public note left on an article. Rows are immutable once
// created: there is no update path, only create and (admin) delete.
type Comment struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	ArticleID  string    `json:"article_id" bson:"article_id"`
	AuthorName string    `json:"author_name" bson:"author_name"`
	Content    string    `json:"content" bson:"content"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}
