package darkroom

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// postRequest is the write payload for create and full-replace update.
// Active is a pointer so an omitted flag defaults to true instead of false.
type postRequest struct {
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
	Active            *bool             `json:"active"`
	Slug              string            `json:"slug"`
	FolderPath        string            `json:"folderPath"`
}

func (r postRequest) toPost() BlogPost {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return BlogPost{
		Title:             r.Title,
		Subtitle:          r.Subtitle,
		SubtitlePlacement: r.SubtitlePlacement,
		Content:           r.Content,
		Excerpt:           r.Excerpt,
		CoverImage:        r.CoverImage,
		Category:          r.Category,
		Tags:              FilterEmpty(r.Tags),
		Author:            r.Author,
		PublishedAt:       r.PublishedAt,
		Status:            r.Status,
		Views:             r.Views,
		Likes:             r.Likes,
		Images:            FilterEmpty(r.Images),
		SEO:               r.SEO,
		Active:            active,
		Slug:              r.Slug,
		FolderPath:        r.FolderPath,
	}
}

func (a *App) handleListPosts(c echo.Context) error {
	filter := PostFilter{
		Status:    c.QueryParam("status"),
		Category:  c.QueryParam("category"),
		Author:    c.QueryParam("author"),
		Tag:       c.QueryParam("tag"),
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return validationf("invalid limit %q", raw)
		}
		filter.Limit = limit
	}

	if filter.IsDefault() {
		posts, err := a.Cache.Posts()
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, posts)
	}

	posts, err := a.Store.ListPosts(filter)
	if err != nil {
		return err
	}
	if posts == nil {
		posts = []BlogPost{}
	}
	return c.JSON(http.StatusOK, posts)
}

func (a *App) handleGetPost(c echo.Context) error {
	post, err := a.Store.GetPost(c.Param("key"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleCreatePost(c echo.Context) error {
	var req postRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	post, err := a.Store.CreatePost(req.toPost())
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusCreated, post)
}

func (a *App) handleUpdatePost(c echo.Context) error {
	existing, err := a.Store.GetPost(c.Param("key"))
	if err != nil {
		return err
	}
	var req postRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	post, err := a.Store.UpdatePost(existing.ID, req.toPost())
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleDeletePost(c echo.Context) error {
	existing, err := a.Store.GetPost(c.Param("key"))
	if err == nil {
		err = a.Store.DeletePost(existing.ID)
	} else if err == ErrNotFound {
		// Deleting something already absent succeeds.
		err = nil
	}
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (a *App) handleLikePost(c echo.Context) error {
	existing, err := a.Store.GetPost(c.Param("key"))
	if err != nil {
		return err
	}
	if err := a.Store.IncrementLikes(existing.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "likes": existing.Likes + 1})
}

func (a *App) handleViewPost(c echo.Context) error {
	existing, err := a.Store.GetPost(c.Param("key"))
	if err != nil {
		return err
	}
	if err := a.Store.IncrementViews(existing.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "views": existing.Views + 1})
}
