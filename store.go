package seotoolkit

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = sql.ErrNoRows

// PostType describes a registered content type.
type PostType struct {
	Name       string
	Label      string
	HasArchive bool
}

// Taxonomy describes a registered taxonomy.
type Taxonomy struct {
	Name  string
	Label string
}

// Store wraps a SQLite database holding the content model: posts, terms,
// authors, attachments, sparse per-entity meta overrides, and the options
// table backing Settings.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL for concurrent read/write, busy timeout so writers wait instead of
	// failing with SQLITE_BUSY, synchronous=NORMAL is safe under WAL.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS post_types (
    name TEXT PRIMARY KEY,
    label TEXT NOT NULL,
    has_archive INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS taxonomies (
    name TEXT PRIMARY KEY,
    label TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    post_type TEXT NOT NULL DEFAULT 'post',
    slug TEXT NOT NULL,
    title TEXT NOT NULL,
    content TEXT NOT NULL DEFAULT '',
    excerpt TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'draft',
    password TEXT NOT NULL DEFAULT '',
    author_id INTEGER NOT NULL DEFAULT 0,
    published_gmt TEXT NOT NULL DEFAULT '',
    modified_gmt TEXT NOT NULL DEFAULT '',
    UNIQUE(post_type, slug)
);
CREATE TABLE IF NOT EXISTS terms (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    taxonomy TEXT NOT NULL,
    slug TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    count INTEGER NOT NULL DEFAULT 0,
    UNIQUE(taxonomy, slug)
);
CREATE TABLE IF NOT EXISTS authors (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    login TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    biography TEXT NOT NULL DEFAULT '',
    twitter TEXT NOT NULL DEFAULT '',
    avatar_url TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS attachments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    post_id INTEGER NOT NULL,
    url TEXT NOT NULL,
    mime TEXT NOT NULL,
    width INTEGER NOT NULL DEFAULT 0,
    height INTEGER NOT NULL DEFAULT 0,
    caption TEXT NOT NULL DEFAULT '',
    featured INTEGER NOT NULL DEFAULT 0,
    position INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_attachments_post ON attachments(post_id, featured DESC, position);
CREATE TABLE IF NOT EXISTS post_meta (
    post_id INTEGER NOT NULL,
    key TEXT NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (post_id, key)
);
CREATE TABLE IF NOT EXISTS term_meta (
    term_id INTEGER NOT NULL,
    key TEXT NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (term_id, key)
);
CREATE TABLE IF NOT EXISTS options (
    name TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`)
	return err
}

// SavePostType upserts a content type registration.
func (s *Store) SavePostType(t PostType) error {
	archive := 0
	if t.HasArchive {
		archive = 1
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO post_types (name, label, has_archive) VALUES (?, ?, ?)`,
		t.Name, t.Label, archive)
	return err
}

// PostTypes returns every registered content type.
func (s *Store) PostTypes() ([]PostType, error) {
	rows, err := s.db.Query(`SELECT name, label, has_archive FROM post_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []PostType
	for rows.Next() {
		var t PostType
		var archive int
		if err := rows.Scan(&t.Name, &t.Label, &archive); err != nil {
			return nil, err
		}
		t.HasArchive = archive == 1
		types = append(types, t)
	}
	return types, rows.Err()
}

// SaveTaxonomy upserts a taxonomy registration.
func (s *Store) SaveTaxonomy(t Taxonomy) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO taxonomies (name, label) VALUES (?, ?)`, t.Name, t.Label)
	return err
}

// Taxonomies returns every registered taxonomy.
func (s *Store) Taxonomies() ([]Taxonomy, error) {
	rows, err := s.db.Query(`SELECT name, label FROM taxonomies ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var taxonomies []Taxonomy
	for rows.Next() {
		var t Taxonomy
		if err := rows.Scan(&t.Name, &t.Label); err != nil {
			return nil, err
		}
		taxonomies = append(taxonomies, t)
	}
	return taxonomies, rows.Err()
}

// SavePost upserts a post and returns its id.
func (s *Store) SavePost(p Post) (int64, error) {
	if p.ID > 0 {
		_, err := s.db.Exec(`INSERT OR REPLACE INTO posts
			(id, post_type, slug, title, content, excerpt, status, password, author_id, published_gmt, modified_gmt)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Type, p.Slug, p.Title, p.Content, p.Excerpt, p.Status, p.Password, p.AuthorID, p.PublishedGMT, p.ModifiedGMT)
		return p.ID, err
	}
	res, err := s.db.Exec(`INSERT INTO posts
		(post_type, slug, title, content, excerpt, status, password, author_id, published_gmt, modified_gmt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Type, p.Slug, p.Title, p.Content, p.Excerpt, p.Status, p.Password, p.AuthorID, p.PublishedGMT, p.ModifiedGMT)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetPost returns a post by id.
func (s *Store) GetPost(id int64) (Post, error) {
	p := Post{ID: id}
	err := s.db.QueryRow(`SELECT post_type, slug, title, content, excerpt, status, password, author_id, published_gmt, modified_gmt
		FROM posts WHERE id = ?`, id).
		Scan(&p.Type, &p.Slug, &p.Title, &p.Content, &p.Excerpt, &p.Status, &p.Password, &p.AuthorID, &p.PublishedGMT, &p.ModifiedGMT)
	if err != nil {
		return Post{}, err
	}
	return p, nil
}

// CountPublished returns the number of published posts of the given type.
func (s *Store) CountPublished(postType string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM posts WHERE post_type = ? AND status = 'publish'`, postType).Scan(&n)
	return n, err
}

// RecentPosts returns the most recent published posts of the given type,
// newest first. Used by the feed.
func (s *Store) RecentPosts(postType string, limit int) ([]Post, error) {
	rows, err := s.db.Query(`SELECT id, post_type, slug, title, content, excerpt, status, password, author_id, published_gmt, modified_gmt
		FROM posts WHERE post_type = ? AND status = 'publish' AND password = ''
		ORDER BY published_gmt DESC LIMIT ?`, postType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Type, &p.Slug, &p.Title, &p.Content, &p.Excerpt, &p.Status, &p.Password, &p.AuthorID, &p.PublishedGMT, &p.ModifiedGMT); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// RecentPostDate returns the published date of the most recent published
// post, or ErrNotFound when no post is published.
func (s *Store) RecentPostDate() (string, error) {
	var date string
	err := s.db.QueryRow(`SELECT published_gmt FROM posts WHERE status = 'publish' ORDER BY published_gmt DESC LIMIT 1`).Scan(&date)
	if err != nil {
		return "", err
	}
	return date, nil
}

// SitemapPost is one eligible row of a content-type sitemap bucket.
type SitemapPost struct {
	ID          int64
	Slug        string
	ModifiedGMT string
}

// SitemapPosts returns eligible posts for a content-type bucket: published,
// not password protected, and with no robots override containing "noindex".
// Ordered by last modified descending, capped at limit; entities beyond the
// cap are excluded from the bucket.
func (s *Store) SitemapPosts(postType string, limit int) ([]SitemapPost, error) {
	rows, err := s.db.Query(`SELECT id, slug, modified_gmt FROM posts
		WHERE post_type = ?
		AND status = 'publish'
		AND password = ''
		AND id NOT IN (
			SELECT post_id FROM post_meta WHERE key = '_seotoolkit_robots' AND value LIKE '%noindex%'
		)
		ORDER BY modified_gmt DESC LIMIT ?`, postType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []SitemapPost
	for rows.Next() {
		var p SitemapPost
		if err := rows.Scan(&p.ID, &p.Slug, &p.ModifiedGMT); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// SaveTerm upserts a term and returns its id.
func (s *Store) SaveTerm(t Term) (int64, error) {
	if t.ID > 0 {
		_, err := s.db.Exec(`INSERT OR REPLACE INTO terms (id, taxonomy, slug, name, description, count) VALUES (?, ?, ?, ?, ?, ?)`,
			t.ID, t.Taxonomy, t.Slug, t.Name, t.Description, t.Count)
		return t.ID, err
	}
	res, err := s.db.Exec(`INSERT INTO terms (taxonomy, slug, name, description, count) VALUES (?, ?, ?, ?, ?)`,
		t.Taxonomy, t.Slug, t.Name, t.Description, t.Count)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetTerm returns a term by id.
func (s *Store) GetTerm(id int64) (Term, error) {
	t := Term{ID: id}
	err := s.db.QueryRow(`SELECT taxonomy, slug, name, description, count FROM terms WHERE id = ?`, id).
		Scan(&t.Taxonomy, &t.Slug, &t.Name, &t.Description, &t.Count)
	if err != nil {
		return Term{}, err
	}
	return t, nil
}

// SitemapTerms returns eligible terms for a taxonomy bucket: terms with at
// least one associated published post and no noindex robots override.
func (s *Store) SitemapTerms(taxonomy string) ([]Term, error) {
	rows, err := s.db.Query(`SELECT id, taxonomy, slug, name, description, count FROM terms
		WHERE taxonomy = ?
		AND count > 0
		AND id NOT IN (
			SELECT term_id FROM term_meta WHERE key = '_seotoolkit_robots' AND value LIKE '%noindex%'
		)
		ORDER BY slug`, taxonomy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []Term
	for rows.Next() {
		var t Term
		if err := rows.Scan(&t.ID, &t.Taxonomy, &t.Slug, &t.Name, &t.Description, &t.Count); err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// CountTerms returns the number of non-empty terms in a taxonomy.
func (s *Store) CountTerms(taxonomy string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM terms WHERE taxonomy = ? AND count > 0`, taxonomy).Scan(&n)
	return n, err
}

// SaveAuthor upserts an author and returns its id.
func (s *Store) SaveAuthor(a Author) (int64, error) {
	if a.ID > 0 {
		_, err := s.db.Exec(`INSERT OR REPLACE INTO authors (id, login, display_name, biography, twitter, avatar_url) VALUES (?, ?, ?, ?, ?, ?)`,
			a.ID, a.Login, a.DisplayName, a.Biography, a.TwitterURL, a.AvatarURL)
		return a.ID, err
	}
	res, err := s.db.Exec(`INSERT INTO authors (login, display_name, biography, twitter, avatar_url) VALUES (?, ?, ?, ?, ?)`,
		a.Login, a.DisplayName, a.Biography, a.TwitterURL, a.AvatarURL)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetAuthor returns an author by id.
func (s *Store) GetAuthor(id int64) (Author, error) {
	a := Author{ID: id}
	err := s.db.QueryRow(`SELECT login, display_name, biography, twitter, avatar_url FROM authors WHERE id = ?`, id).
		Scan(&a.Login, &a.DisplayName, &a.Biography, &a.TwitterURL, &a.AvatarURL)
	if err != nil {
		return Author{}, err
	}
	return a, nil
}

// GetAuthorByLogin returns an author by login name.
func (s *Store) GetAuthorByLogin(login string) (Author, error) {
	var a Author
	err := s.db.QueryRow(`SELECT id, login, display_name, biography, twitter, avatar_url FROM authors WHERE login = ?`, login).
		Scan(&a.ID, &a.Login, &a.DisplayName, &a.Biography, &a.TwitterURL, &a.AvatarURL)
	if err != nil {
		return Author{}, err
	}
	return a, nil
}

// AuthorsWithPosts returns every author with at least one published post.
func (s *Store) AuthorsWithPosts() ([]Author, error) {
	rows, err := s.db.Query(`SELECT DISTINCT a.id, a.login, a.display_name, a.biography, a.twitter, a.avatar_url
		FROM authors a JOIN posts p ON p.author_id = a.id
		WHERE p.status = 'publish'
		ORDER BY a.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []Author
	for rows.Next() {
		var a Author
		if err := rows.Scan(&a.ID, &a.Login, &a.DisplayName, &a.Biography, &a.TwitterURL, &a.AvatarURL); err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// SaveAttachment upserts an attachment and returns its id.
func (s *Store) SaveAttachment(a Attachment) (int64, error) {
	featured := 0
	if a.Featured {
		featured = 1
	}
	if a.ID > 0 {
		_, err := s.db.Exec(`INSERT OR REPLACE INTO attachments (id, post_id, url, mime, width, height, caption, featured, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.PostID, a.URL, a.Mime, a.Width, a.Height, a.Caption, featured, a.Position)
		return a.ID, err
	}
	res, err := s.db.Exec(`INSERT INTO attachments (post_id, url, mime, width, height, caption, featured, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.PostID, a.URL, a.Mime, a.Width, a.Height, a.Caption, featured, a.Position)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetAttachment returns an attachment by id.
func (s *Store) GetAttachment(id int64) (Attachment, error) {
	a := Attachment{ID: id}
	var featured int
	err := s.db.QueryRow(`SELECT post_id, url, mime, width, height, caption, featured, position FROM attachments WHERE id = ?`, id).
		Scan(&a.PostID, &a.URL, &a.Mime, &a.Width, &a.Height, &a.Caption, &featured, &a.Position)
	if err != nil {
		return Attachment{}, err
	}
	a.Featured = featured == 1
	return a, nil
}

// PostImages returns a post's attachments: the featured image first, then
// gallery images in position order.
func (s *Store) PostImages(postID int64) ([]Attachment, error) {
	rows, err := s.db.Query(`SELECT id, post_id, url, mime, width, height, caption, featured, position
		FROM attachments WHERE post_id = ? ORDER BY featured DESC, position`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []Attachment
	for rows.Next() {
		var a Attachment
		var featured int
		if err := rows.Scan(&a.ID, &a.PostID, &a.URL, &a.Mime, &a.Width, &a.Height, &a.Caption, &featured, &a.Position); err != nil {
			return nil, err
		}
		a.Featured = featured == 1
		images = append(images, a)
	}
	return images, rows.Err()
}

// FeaturedImage returns a post's featured image, or ErrNotFound.
func (s *Store) FeaturedImage(postID int64) (Attachment, error) {
	var a Attachment
	var featured int
	err := s.db.QueryRow(`SELECT id, post_id, url, mime, width, height, caption, featured, position
		FROM attachments WHERE post_id = ? AND featured = 1 LIMIT 1`, postID).
		Scan(&a.ID, &a.PostID, &a.URL, &a.Mime, &a.Width, &a.Height, &a.Caption, &featured, &a.Position)
	if err != nil {
		return Attachment{}, err
	}
	a.Featured = true
	return a, nil
}

// PostMeta returns the override value for a post, or "" when unset.
func (s *Store) PostMeta(postID int64, key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM post_meta WHERE post_id = ? AND key = ?`, postID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetPostMeta upserts an override; an empty value clears it.
func (s *Store) SetPostMeta(postID int64, key, value string) error {
	if value == "" {
		_, err := s.db.Exec(`DELETE FROM post_meta WHERE post_id = ? AND key = ?`, postID, key)
		return err
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO post_meta (post_id, key, value) VALUES (?, ?, ?)`, postID, key, value)
	return err
}

// TermMeta returns the override value for a term, or "" when unset.
func (s *Store) TermMeta(termID int64, key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM term_meta WHERE term_id = ? AND key = ?`, termID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetTermMeta upserts an override; an empty value clears it.
func (s *Store) SetTermMeta(termID int64, key, value string) error {
	if value == "" {
		_, err := s.db.Exec(`DELETE FROM term_meta WHERE term_id = ? AND key = ?`, termID, key)
		return err
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO term_meta (term_id, key, value) VALUES (?, ?, ?)`, termID, key, value)
	return err
}

// Option returns a raw option value, or "" when unset.
func (s *Store) Option(name string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM options WHERE name = ?`, name).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetOption upserts a raw option value.
func (s *Store) SetOption(name, value string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO options (name, value) VALUES (?, ?)`, name, value)
	return err
}
