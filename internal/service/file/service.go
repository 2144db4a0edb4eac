package file

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Import for PNG decoding support
	"math"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/storage"
	"golang.org/x/image/draw"
)

const (
	maxPhotoBytes = 10 << 20 // 10MB decoded
	maxStoredSize = 150 * 1024
	minStoredSize = 50 * 1024
)

var ErrInvalidImage = errors.New("invalid image")

// StoredPhoto identifies an uploaded photo.
type StoredPhoto struct {
	URL string
	Key string
}

type FileService interface {
	// UploadAttendancePhoto decodes a data URI or bare base64 jpeg/png, compresses
	// it and stores it under attendance/{date}/.
	UploadAttendancePhoto(ctx context.Context, userID string, date time.Time, encoded string, captureType string) (StoredPhoto, error)

	// DeleteFile deletes a stored key
	DeleteFile(ctx context.Context, key string) error
}

type fileServiceImpl struct {
	storage storage.FileStorage
	now     func() time.Time
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
		now:     time.Now,
	}
}

// UploadAttendancePhoto implements FileService.
func (s *fileServiceImpl) UploadAttendancePhoto(ctx context.Context, userID string, date time.Time, encoded string, captureType string) (StoredPhoto, error) {
	raw, err := decodePhoto(encoded)
	if err != nil {
		return StoredPhoto{}, err
	}

	// Compress image to target size (50KB - 150KB)
	compressed, err := compressImage(raw, maxStoredSize, minStoredSize)
	if err != nil {
		return StoredPhoto{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	// attendance/{date}/{userID}-{captureType}-{timestamp}-{id}.jpg
	// Always JPEG after compression
	newFilename := fmt.Sprintf("%s-%s-%d-%s.jpg", userID, captureType, s.now().Unix(), uuid.NewString()[:8])
	key := path.Join("attendance", date.Format("2006-01-02"), newFilename)

	uploadedKey, err := s.storage.Upload(ctx, bytes.NewReader(compressed), key, "image/jpeg")
	if err != nil {
		return StoredPhoto{}, fmt.Errorf("failed to upload attendance photo: %w", err)
	}

	return StoredPhoto{
		URL: s.storage.URL(uploadedKey),
		Key: uploadedKey,
	}, nil
}

// DeleteFile deletes a file
func (s *fileServiceImpl) DeleteFile(ctx context.Context, key string) error {
	return s.storage.Delete(ctx, key)
}

// ==================== HELPER FUNCTIONS ====================

// decodePhoto accepts "data:image/jpeg;base64,..." or bare base64.
func decodePhoto(encoded string) ([]byte, error) {
	payload := strings.TrimSpace(encoded)
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 {
			return nil, fmt.Errorf("%w: malformed data URI", ErrInvalidImage)
		}
		header := payload[len("data:"):comma]
		if !strings.HasSuffix(header, ";base64") {
			return nil, fmt.Errorf("%w: data URI must be base64 encoded", ErrInvalidImage)
		}
		mediaType := strings.TrimSuffix(header, ";base64")
		if mediaType != "image/jpeg" && mediaType != "image/jpg" && mediaType != "image/png" {
			return nil, fmt.Errorf("%w: only jpeg and png are allowed", ErrInvalidImage)
		}
		payload = payload[comma+1:]
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > maxPhotoBytes {
		return nil, fmt.Errorf("%w: photo must not exceed 10MB", ErrInvalidImage)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	if _, format, err := image.DecodeConfig(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	} else if format != "jpeg" && format != "png" {
		return nil, fmt.Errorf("%w: only jpeg and png are allowed", ErrInvalidImage)
	}

	return raw, nil
}

// compressImage compresses an image to target size range
// maxSize: maximum allowed size (e.g., 150KB)
// minSize: minimum target size (e.g., 50KB)
func compressImage(buffer []byte, maxSize int, minSize int) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	// JPEGs already in range are stored untouched
	if format == "jpeg" && len(buffer) <= maxSize {
		return buffer, nil
	}

	bounds := img.Bounds()
	originalWidth := bounds.Dx()
	originalHeight := bounds.Dy()

	quality := 85
	var compressed []byte

	for quality >= 50 {
		buf := new(bytes.Buffer)
		if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
		compressed = buf.Bytes()

		if len(compressed) <= maxSize {
			return compressed, nil
		}
		quality -= 5
	}

	// Still too large: scale down toward the middle of the range
	targetSize := (maxSize + minSize) / 2
	ratio := math.Sqrt(float64(targetSize) / float64(len(compressed)))
	newWidth := int(float64(originalWidth) * ratio)
	newHeight := int(float64(originalHeight) * ratio)
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	resized := resizeImage(img, newWidth, newHeight)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, resized, &jpeg.Options{Quality: 70}); err != nil {
		return nil, fmt.Errorf("failed to encode resized image: %w", err)
	}

	return buf.Bytes(), nil
}

// resizeImage resizes an image to the specified dimensions using high-quality interpolation
func resizeImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
