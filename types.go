package darkroom

// BlogPost is the core content type stored in SQLite and returned by the API.
// Array and map valued fields are stored as JSON text columns; timestamps are
// RFC 3339 strings in UTC.
type BlogPost struct {
	ID                int64             `json:"id"`
	Title             string            `json:"title"`
	Subtitle          string            `json:"subtitle"`
	SubtitlePlacement string            `json:"subtitlePlacement"`
	Content           string            `json:"content"`
	Excerpt           string            `json:"excerpt"`
	CoverImage        string            `json:"coverImage"`
	Category          string            `json:"category"`
	Tags              []string          `json:"tags"`
	Author            string            `json:"author"`
	PublishedAt       string            `json:"publishedAt"`
	Status            string            `json:"status"`
	Views             int64             `json:"views"`
	Likes             int64             `json:"likes"`
	Images            []string          `json:"images"`
	SEO               map[string]string `json:"seo"`
	Active            bool              `json:"active"`
	Slug              string            `json:"slug"`
	FolderPath        string            `json:"folderPath"`
	CreatedAt         string            `json:"createdAt"`
	UpdatedAt         string            `json:"updatedAt"`
}

// Post lifecycle states. Scheduled posts flip to published once their
// publish time passes.
const (
	StatusDraft     = "draft"
	StatusScheduled = "scheduled"
	StatusPublished = "published"
)

// Collection is a named, ordered group of gallery images.
type Collection struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Category  string         `json:"category"`
	CreatedAt string         `json:"createdAt"`
	Images    []GalleryImage `json:"images"`
}

// GalleryImage belongs to exactly one collection. Position defines display
// order. Tags are plain strings owned by the image; duplicate tag text across
// images is expected and harmless.
type GalleryImage struct {
	ID           int64    `json:"id"`
	CollectionID int64    `json:"collectionId"`
	URL          string   `json:"url"`
	Position     int      `json:"position"`
	Tags         []string `json:"tags"`
}

// UploadedFile describes a file stored under the public static root.
// Position is parsed from the numeric filename prefix for folder listings
// and is -1 when the filename carries no numeric prefix.
type UploadedFile struct {
	Filename     string `json:"filename"`
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	Position     int    `json:"position"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}
