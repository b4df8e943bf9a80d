package darkroom

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	maxUploadSize       = 5 << 20 // 5 MiB
	thumbWidth          = 480
	jpegQuality         = 80
	defaultUploadFolder = "uploads"
)

// allowedImageTypes maps accepted MIME types to the stored file extension.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// imageExtensions is the extension allow-list used when scanning folders.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Uploader writes image files beneath the public static root and lists them
// back. Each call is stateless; display order inside a folder is an emergent
// property of zero-padded filenames, not tracked metadata.
type Uploader struct {
	root    string
	baseURL string
}

// NewUploader creates an Uploader rooted at the public static directory.
// baseURL is prefixed to returned public URLs.
func NewUploader(root, baseURL string) *Uploader {
	return &Uploader{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// resolve confines folder to the static root. Rooting the path at "/" before
// cleaning makes ".." segments resolve inside the virtual root instead of
// escaping it.
func (u *Uploader) resolve(folder string) (dir string, rel string) {
	rel = filepath.ToSlash(filepath.Clean("/" + folder))
	rel = strings.TrimPrefix(rel, "/")
	return filepath.Join(u.root, filepath.FromSlash(rel)), rel
}

func (u *Uploader) publicURL(rel, filename string) string {
	return u.baseURL + "/public/" + rel + "/" + filename
}

// Save validates and stores a single upload under folder with a generated
// filename, writing the bytes verbatim. A JPEG thumbnail variant is written
// alongside when the image decodes and is wider than the thumbnail width;
// thumbnail failures never fail the upload.
func (u *Uploader) Save(folder, contentType string, size int64, src io.Reader) (UploadedFile, error) {
	ext, ok := allowedImageTypes[normalizeContentType(contentType)]
	if !ok {
		return UploadedFile{}, validationf("unsupported file type %q", contentType)
	}
	if size > maxUploadSize {
		return UploadedFile{}, validationf("file too large (max 5 MiB)")
	}
	data, err := io.ReadAll(io.LimitReader(src, maxUploadSize+1))
	if err != nil {
		return UploadedFile{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > maxUploadSize {
		return UploadedFile{}, validationf("file too large (max 5 MiB)")
	}

	if folder == "" {
		folder = defaultUploadFolder
	}
	dir, rel := u.resolve(folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return UploadedFile{}, fmt.Errorf("create upload dir: %w", err)
	}

	filename := uuid.New().String() + ext
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
		return UploadedFile{}, fmt.Errorf("write upload: %w", err)
	}

	uploaded := UploadedFile{
		Filename: filename,
		URL:      u.publicURL(rel, filename),
		Size:     int64(len(data)),
		Position: -1,
	}
	if thumb, err := makeThumbnail(data); err == nil && thumb != nil {
		thumbName := "thumb_" + strings.TrimSuffix(filename, ext) + ".jpg"
		if err := os.WriteFile(filepath.Join(dir, thumbName), thumb, 0o644); err == nil {
			uploaded.ThumbnailURL = u.publicURL(rel, thumbName)
		}
	}
	return uploaded, nil
}

// SaveToFolder stores an upload under folderPath with the caller-supplied
// filename, written verbatim. Callers encode display order by zero-padding
// filenames (00.jpg, 01.jpg, ...).
func (u *Uploader) SaveToFolder(folderPath, filename, contentType string, src io.Reader) (UploadedFile, error) {
	if strings.TrimSpace(folderPath) == "" {
		return UploadedFile{}, validationf("folderPath is required")
	}
	if _, ok := allowedImageTypes[normalizeContentType(contentType)]; !ok {
		return UploadedFile{}, validationf("unsupported file type %q", contentType)
	}
	filename = filepath.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		return UploadedFile{}, validationf("filename is required")
	}

	data, err := io.ReadAll(io.LimitReader(src, maxUploadSize+1))
	if err != nil {
		return UploadedFile{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > maxUploadSize {
		return UploadedFile{}, validationf("file too large (max 5 MiB)")
	}

	dir, rel := u.resolve(folderPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return UploadedFile{}, fmt.Errorf("create folder: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
		return UploadedFile{}, fmt.Errorf("write upload: %w", err)
	}
	return UploadedFile{
		Filename: filename,
		URL:      u.publicURL(rel, filename),
		Size:     int64(len(data)),
		Position: parsePosition(filename),
	}, nil
}

// ListFolder scans folderPath, filters to the image-extension allow-list,
// and returns entries sorted by filename. Zero-padded filenames make the
// lexicographic sort a numeric one. A folder that was never created lists as
// empty.
func (u *Uploader) ListFolder(folderPath string) ([]UploadedFile, error) {
	if strings.TrimSpace(folderPath) == "" {
		return nil, validationf("folderPath is required")
	}
	dir, rel := u.resolve(folderPath)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []UploadedFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list folder: %w", err)
	}

	// os.ReadDir returns entries sorted by filename.
	files := []UploadedFile{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !imageExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, UploadedFile{
			Filename: name,
			URL:      u.publicURL(rel, name),
			Size:     info.Size(),
			Position: parsePosition(name),
		})
	}
	return files, nil
}

// DeleteFolder removes folderPath and everything in it. A folder that never
// existed deletes successfully.
func (u *Uploader) DeleteFolder(folderPath string) error {
	if strings.TrimSpace(folderPath) == "" {
		return validationf("folderPath is required")
	}
	dir, _ := u.resolve(folderPath)
	return os.RemoveAll(dir)
}

// parsePosition derives a position integer from the numeric filename prefix,
// or -1 when there is none.
func parsePosition(filename string) int {
	end := 0
	for end < len(filename) && filename[end] >= '0' && filename[end] <= '9' {
		end++
	}
	if end == 0 {
		return -1
	}
	n, err := strconv.Atoi(filename[:end])
	if err != nil {
		return -1
	}
	return n
}

func normalizeContentType(ct string) string {
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// makeThumbnail downscales data to thumbWidth and encodes it as JPEG.
// Returns nil bytes when the image is already narrow enough.
func makeThumbnail(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= thumbWidth {
		return nil, nil
	}
	newH := h * thumbWidth / w
	dst := image.NewRGBA(image.Rect(0, 0, thumbWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
