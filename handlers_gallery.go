package darkroom

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// collectionRequest is the write payload for collections. Images is a
// pointer so an omitted field leaves the stored image set alone while an
// explicit array replaces it in full.
type collectionRequest struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Images   *[]imageRequest `json:"images"`
}

type imageRequest struct {
	URL      string   `json:"url"`
	Position int      `json:"position"`
	Tags     []string `json:"tags"`
}

func (r imageRequest) toImage() GalleryImage {
	return GalleryImage{URL: r.URL, Position: r.Position, Tags: FilterEmpty(r.Tags)}
}

func (r collectionRequest) toCollection() Collection {
	c := Collection{Name: r.Name, Category: r.Category}
	if r.Images != nil {
		for _, img := range *r.Images {
			c.Images = append(c.Images, img.toImage())
		}
	}
	return c
}

func idParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, validationf("invalid id %q", c.Param("id"))
	}
	return id, nil
}

func (a *App) handleListCollections(c echo.Context) error {
	collections, err := a.Cache.Collections()
	if err != nil {
		return err
	}
	if collections == nil {
		collections = []Collection{}
	}
	return c.JSON(http.StatusOK, collections)
}

func (a *App) handleGetCollection(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	collection, err := a.Store.GetCollection(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, collection)
}

func (a *App) handleCreateCollection(c echo.Context) error {
	var req collectionRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	collection, err := a.Store.CreateCollection(req.toCollection())
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusCreated, collection)
}

func (a *App) handleUpdateCollection(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req collectionRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	collection, err := a.Store.UpdateCollection(id, req.toCollection(), req.Images != nil)
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusOK, collection)
}

func (a *App) handleDeleteCollection(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := a.Store.DeleteCollection(id); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (a *App) handleAddImage(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req imageRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	image, err := a.Store.AddImage(id, req.toImage())
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusCreated, image)
}

func (a *App) handleUpdateImage(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req imageRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	image, err := a.Store.UpdateImage(id, req.toImage())
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusOK, image)
}

func (a *App) handleDeleteImage(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := a.Store.DeleteImage(id); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
