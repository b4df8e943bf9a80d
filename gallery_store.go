package darkroom

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

// ListCollections returns every collection with its images and per-image
// tags eagerly attached. Images are ordered by position.
func (s *Store) ListCollections() ([]Collection, error) {
	rows, err := s.db.Query("SELECT id, name, category, created_at FROM collections ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var collections []Collection
	index := make(map[int64]int)
	for rows.Next() {
		var c Collection
		if err := rows.Scan(&c.ID, &c.Name, &c.Category, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Images = []GalleryImage{}
		index[c.ID] = len(collections)
		collections = append(collections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	images, err := s.loadImages("")
	if err != nil {
		return nil, err
	}
	for _, img := range images {
		if i, ok := index[img.CollectionID]; ok {
			collections[i].Images = append(collections[i].Images, img)
		}
	}
	return collections, nil
}

// GetCollection returns a single collection with images and tags attached.
func (s *Store) GetCollection(id int64) (Collection, error) {
	var c Collection
	err := s.db.QueryRow("SELECT id, name, category, created_at FROM collections WHERE id = ?", id).
		Scan(&c.ID, &c.Name, &c.Category, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Collection{}, ErrNotFound
	}
	if err != nil {
		return Collection{}, err
	}
	c.Images, err = s.loadImages("WHERE i.collection_id = ?", id)
	if err != nil {
		return Collection{}, err
	}
	return c, nil
}

// loadImages fetches images (optionally constrained by where) with their
// tags attached, ordered by collection then position.
func (s *Store) loadImages(where string, args ...any) ([]GalleryImage, error) {
	query := "SELECT i.id, i.collection_id, i.url, i.position FROM collection_images i "
	if where != "" {
		query += where + " "
	}
	query += "ORDER BY i.collection_id, i.position, i.id"
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []GalleryImage{}
	index := make(map[int64]int)
	for rows.Next() {
		var img GalleryImage
		if err := rows.Scan(&img.ID, &img.CollectionID, &img.URL, &img.Position); err != nil {
			return nil, err
		}
		img.Tags = []string{}
		index[img.ID] = len(images)
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return images, nil
	}

	tagQuery := "SELECT t.image_id, t.tag FROM image_tags t "
	if where != "" {
		tagQuery += "JOIN collection_images i ON i.id = t.image_id " + where + " "
	}
	tagQuery += "ORDER BY t.image_id, t.id"
	tagRows, err := s.db.Query(tagQuery, args...)
	if err != nil {
		return nil, err
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var imageID int64
		var tag string
		if err := tagRows.Scan(&imageID, &tag); err != nil {
			return nil, err
		}
		if i, ok := index[imageID]; ok {
			images[i].Tags = append(images[i].Tags, tag)
		}
	}
	return images, tagRows.Err()
}

// CreateCollection persists a collection and any images carried in the
// payload, returning the stored record with children attached.
func (s *Store) CreateCollection(c Collection) (Collection, error) {
	if strings.TrimSpace(c.Name) == "" {
		return Collection{}, validationf("name is required")
	}
	now := time.Now().UTC().Format(time.RFC3339)
	tx, err := s.db.Begin()
	if err != nil {
		return Collection{}, err
	}
	defer tx.Rollback()

	res, err := tx.Exec("INSERT INTO collections (name, category, created_at) VALUES (?, ?, ?)",
		strings.TrimSpace(c.Name), c.Category, now)
	if err != nil {
		return Collection{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Collection{}, err
	}
	if err := insertImages(tx, id, c.Images); err != nil {
		return Collection{}, err
	}
	if err := tx.Commit(); err != nil {
		return Collection{}, err
	}
	return s.GetCollection(id)
}

// UpdateCollection persists the top-level fields of a collection. When
// replaceImages is set the full image set (and each image's tags) is
// replaced with the one in the payload; otherwise child records are left to
// their own endpoints.
func (s *Store) UpdateCollection(id int64, c Collection, replaceImages bool) (Collection, error) {
	if strings.TrimSpace(c.Name) == "" {
		return Collection{}, validationf("name is required")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return Collection{}, err
	}
	defer tx.Rollback()

	res, err := tx.Exec("UPDATE collections SET name = ?, category = ? WHERE id = ?",
		strings.TrimSpace(c.Name), c.Category, id)
	if err != nil {
		return Collection{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Collection{}, err
	}
	if n == 0 {
		return Collection{}, ErrNotFound
	}
	if replaceImages {
		if err := deleteCollectionChildren(tx, id); err != nil {
			return Collection{}, err
		}
		if err := insertImages(tx, id, c.Images); err != nil {
			return Collection{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return Collection{}, err
	}
	return s.GetCollection(id)
}

// DeleteCollection removes a collection together with its images and each
// image's tags. Deleting an absent collection is not an error.
func (s *Store) DeleteCollection(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteCollectionChildren(tx, id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM collections WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteCollectionChildren(tx *sql.Tx, collectionID int64) error {
	if _, err := tx.Exec(`DELETE FROM image_tags WHERE image_id IN
		(SELECT id FROM collection_images WHERE collection_id = ?)`, collectionID); err != nil {
		return err
	}
	_, err := tx.Exec("DELETE FROM collection_images WHERE collection_id = ?", collectionID)
	return err
}

func insertImages(tx *sql.Tx, collectionID int64, images []GalleryImage) error {
	for _, img := range images {
		if _, err := insertImage(tx, collectionID, img); err != nil {
			return err
		}
	}
	return nil
}

func insertImage(tx *sql.Tx, collectionID int64, img GalleryImage) (int64, error) {
	if strings.TrimSpace(img.URL) == "" {
		return 0, validationf("url is required")
	}
	res, err := tx.Exec("INSERT INTO collection_images (collection_id, url, position) VALUES (?, ?, ?)",
		collectionID, img.URL, img.Position)
	if err != nil {
		return 0, err
	}
	imageID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, tag := range FilterEmpty(img.Tags) {
		if _, err := tx.Exec("INSERT INTO image_tags (image_id, tag) VALUES (?, ?)", imageID, tag); err != nil {
			return 0, err
		}
	}
	return imageID, nil
}

// AddImage appends an image (with tags) to an existing collection and
// returns the stored record for exactly that image.
func (s *Store) AddImage(collectionID int64, img GalleryImage) (GalleryImage, error) {
	var exists int
	err := s.db.QueryRow("SELECT 1 FROM collections WHERE id = ?", collectionID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return GalleryImage{}, ErrNotFound
	}
	if err != nil {
		return GalleryImage{}, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return GalleryImage{}, err
	}
	defer tx.Rollback()
	imageID, err := insertImage(tx, collectionID, img)
	if err != nil {
		return GalleryImage{}, err
	}
	if err := tx.Commit(); err != nil {
		return GalleryImage{}, err
	}
	images, err := s.loadImages("WHERE i.id = ?", imageID)
	if err != nil {
		return GalleryImage{}, err
	}
	if len(images) == 0 {
		return GalleryImage{}, ErrNotFound
	}
	return images[0], nil
}

// UpdateImage replaces an image's URL, position, and tag set.
func (s *Store) UpdateImage(id int64, img GalleryImage) (GalleryImage, error) {
	if strings.TrimSpace(img.URL) == "" {
		return GalleryImage{}, validationf("url is required")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return GalleryImage{}, err
	}
	defer tx.Rollback()

	res, err := tx.Exec("UPDATE collection_images SET url = ?, position = ? WHERE id = ?",
		img.URL, img.Position, id)
	if err != nil {
		return GalleryImage{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return GalleryImage{}, err
	}
	if n == 0 {
		return GalleryImage{}, ErrNotFound
	}
	if _, err := tx.Exec("DELETE FROM image_tags WHERE image_id = ?", id); err != nil {
		return GalleryImage{}, err
	}
	for _, tag := range FilterEmpty(img.Tags) {
		if _, err := tx.Exec("INSERT INTO image_tags (image_id, tag) VALUES (?, ?)", id, tag); err != nil {
			return GalleryImage{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return GalleryImage{}, err
	}
	images, err := s.loadImages("WHERE i.id = ?", id)
	if err != nil {
		return GalleryImage{}, err
	}
	if len(images) == 0 {
		return GalleryImage{}, ErrNotFound
	}
	return images[0], nil
}

// DeleteImage removes an image and its tags. Idempotent.
func (s *Store) DeleteImage(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec("DELETE FROM image_tags WHERE image_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM collection_images WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}
