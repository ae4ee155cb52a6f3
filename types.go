package seotoolkit

// Post is a content item of any registered type (post, page, custom types).
// Sparse SEO overrides live in post meta, not on the record itself.
type Post struct {
	ID           int64
	Type         string
	Slug         string
	Title        string
	Content      string
	Excerpt      string
	Status       string
	Password     string
	AuthorID     int64
	PublishedGMT string // W3C datetime, UTC
	ModifiedGMT  string // W3C datetime, UTC
}

// Term is a taxonomy term (category, tag, custom taxonomies).
type Term struct {
	ID          int64
	Taxonomy    string
	Slug        string
	Name        string
	Description string
	Count       int // number of published posts associated with the term
}

// Author is a content author with an archive page.
type Author struct {
	ID          int64
	Login       string
	DisplayName string
	Biography   string
	TwitterURL  string // profile URL, e.g. https://twitter.com/handle
	AvatarURL   string
}

// Attachment is an uploaded media file associated with a post. Width and
// height are recorded at upload time and are required for social image tags.
type Attachment struct {
	ID       int64
	PostID   int64
	URL      string
	Mime     string
	Width    int
	Height   int
	Caption  string
	Featured bool
	Position int // ordering within the post's gallery
}
