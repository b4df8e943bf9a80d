package darkroom

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (a *App) handleUpload(c echo.Context) error {
	if !a.uploadLimiter.Allow(c.RealIP()) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many uploads, try again later")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return validationf("file is required")
	}
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	uploaded, err := a.Uploads.Save(c.FormValue("folder"), fh.Header.Get("Content-Type"), fh.Size, src)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, uploaded)
}

func (a *App) handleFolderUpload(c echo.Context) error {
	if !a.uploadLimiter.Allow(c.RealIP()) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many uploads, try again later")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return validationf("file is required")
	}
	filename := c.FormValue("filename")
	if filename == "" {
		filename = fh.Filename
	}
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	uploaded, err := a.Uploads.SaveToFolder(c.FormValue("folderPath"), filename, fh.Header.Get("Content-Type"), src)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, uploaded)
}

func (a *App) handleFolderList(c echo.Context) error {
	files, err := a.Uploads.ListFolder(c.QueryParam("folderPath"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"files": files})
}

func (a *App) handleFolderDelete(c echo.Context) error {
	folderPath := c.QueryParam("folderPath")
	if folderPath == "" {
		folderPath = c.FormValue("folderPath")
	}
	if err := a.Uploads.DeleteFolder(folderPath); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
