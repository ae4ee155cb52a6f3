package seotoolkit

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	maxImageWidth = 1200
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
)

// processImage decodes an image from src, optionally resizes it to
// maxImageWidth, and encodes it as JPEG. The recorded width and height back
// the Open Graph and Twitter image dimension contract.
func processImage(src io.Reader, originalName string) (Attachment, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return Attachment{}, nil, fmt.Errorf("seotoolkit: decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxImageWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Attachment{}, nil, fmt.Errorf("seotoolkit: encode jpeg: %w", err)
	}

	filename := slugifyFilename(originalName) + ".jpg"

	return Attachment{
		URL:    filename, // rewritten to an absolute URL once the file lands
		Mime:   "image/jpeg",
		Width:  w,
		Height: h,
	}, buf.Bytes(), nil
}

// slugifyFilename converts a filename (without extension) to a URL-safe slug.
func slugifyFilename(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return Slugify(base)
}

// ensureUniqueFilename appends a counter while the candidate already exists
// in the uploads directory.
func (a *App) ensureUniqueFilename(filename string) string {
	base := strings.TrimSuffix(filename, ".jpg")
	candidate := filename
	counter := 1
	for {
		if _, err := os.Stat(filepath.Join(a.Config.UploadsDir, candidate)); os.IsNotExist(err) {
			return candidate
		}
		counter++
		candidate = fmt.Sprintf("%s-%d.jpg", base, counter)
	}
}

// handleImageUpload processes an uploaded image, stores the file, and records
// the attachment with its dimensions. The post_id form field associates it
// with a post; featured marks it as the post's featured image.
func (a *App) handleImageUpload(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.String(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > maxUploadSize {
		return c.String(http.StatusBadRequest, "File too large (max 10MB)")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	attachment, data, err := processImage(src, file.Filename)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid image: "+err.Error())
	}

	filename := a.ensureUniqueFilename(attachment.URL)
	if err := os.MkdirAll(a.Config.UploadsDir, 0o755); err != nil {
		return fmt.Errorf("seotoolkit: create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(a.Config.UploadsDir, filename), data, 0o644); err != nil {
		return fmt.Errorf("seotoolkit: write image: %w", err)
	}

	attachment.URL = strings.TrimRight(a.Config.URL, "/") + "/public/uploads/" + filename
	attachment.PostID, _ = strconv.ParseInt(c.FormValue("post_id"), 10, 64)
	attachment.Caption = c.FormValue("caption")
	attachment.Featured = c.FormValue("featured") != ""

	if attachment.PostID != 0 {
		images, err := a.Store.PostImages(attachment.PostID)
		if err != nil {
			return err
		}
		attachment.Position = len(images)
	}

	id, err := a.Store.SaveAttachment(attachment)
	if err != nil {
		return err
	}
	attachment.ID = id

	return c.JSON(http.StatusCreated, attachment)
}
