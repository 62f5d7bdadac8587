package handler

// --- Project requests ---

// createProjectRequest mirrors the admin form: technologies arrives as
// comma-separated text and is parsed server-side.
type createProjectRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Technologies string `json:"technologies"`
	Icon         string `json:"icon"`
	DemoURL      string `json:"demo_url"`
	RepoURL      string `json:"repo_url"`
	SortOrder    int    `json:"sort_order"`
	IsPublished  *bool  `json:"is_published"`
}

// updateProjectRequest is a partial patch: only non-nil fields are applied
// to the stored record before the merged result is re-validated.
type updateProjectRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Technologies *string `json:"technologies"`
	Icon         *string `json:"icon"`
	DemoURL      *string `json:"demo_url"`
	RepoURL      *string `json:"repo_url"`
	SortOrder    *int    `json:"sort_order"`
	IsPublished  *bool   `json:"is_published"`
}

// --- Article requests ---

type createArticleRequest struct {
	Title       string `json:"title"`
	Excerpt     string `json:"excerpt"`
	Content     string `json:"content"`
	Category    string `json:"category"`
	ReadTime    string `json:"read_time"`
	URL         string `json:"url"`
	SortOrder   int    `json:"sort_order"`
	IsPublished *bool  `json:"is_published"`
}

type updateArticleRequest struct {
	Title       *string `json:"title"`
	Excerpt     *string `json:"excerpt"`
	Content     *string `json:"content"`
	Category    *string `json:"category"`
	ReadTime    *string `json:"read_time"`
	URL         *string `json:"url"`
	SortOrder   *int    `json:"sort_order"`
	IsPublished *bool   `json:"is_published"`
}

// --- Comments ---

type submitCommentRequest struct {
	AuthorName string `json:"author_name"`
	Content    string `json:"content"`
}
