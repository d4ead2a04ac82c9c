package services

import (
	"bytes"
	"fmt"
	"image"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/echoflow-solutions/carescribe-api/config"
	"github.com/echoflow-solutions/carescribe-api/db"
	apiError "github.com/echoflow-solutions/carescribe-api/errors"
	"github.com/google/uuid"
)

const MaxAttachmentSize = 10 << 20

// MediaService processes photo attachments for incident reports: a feed
// rendition, a thumbnail, and the untouched original, all stored in S3.
type MediaService interface {
	ProcessReportMedia(formMedia []*multipart.FileHeader, userID uint, reportID string) (feedURLs, thumbnailURLs, fullSizeURLs []string, err error)
}

type mediaService struct {
	Config    *config.Config
	mediaRepo db.MediaRepository
}

func NewMediaService(mediaRepo db.MediaRepository, conf *config.Config) MediaService {
	return &mediaService{
		Config:    conf,
		mediaRepo: mediaRepo,
	}
}

func CheckFileSize(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxAttachmentSize {
		return fmt.Errorf("file %s exceeds the maximum allowed size", fileHeader.Filename)
	}
	return nil
}

var supportedImageTypes = map[string]bool{
	".png":  true,
	".jpeg": true,
	".jpg":  true,
	".gif":  true,
}

func CheckSupportedFile(filename string) (bool, string) {
	ext := strings.ToLower(filepath.Ext(filename))
	return supportedImageTypes[ext], ext
}

func generateUniqueFilename(extension string) string {
	return fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), uuid.New(), extension)
}

type imageResult struct {
	FeedURL      string
	ThumbnailURL string
	FullSizeURL  string
	Err          error
}

func (m *mediaService) ProcessReportMedia(formMedia []*multipart.FileHeader, userID uint, reportID string) ([]string, []string, []string, error) {
	var (
		wg      sync.WaitGroup
		results = make(chan imageResult, len(formMedia))
	)

	for _, fileHeader := range formMedia {
		if err := CheckFileSize(fileHeader); err != nil {
			return nil, nil, nil, apiError.New(err.Error(), 400)
		}
		if ok, ext := CheckSupportedFile(fileHeader.Filename); !ok {
			return nil, nil, nil, apiError.New(fmt.Sprintf("unsupported attachment type %q", ext), 400)
		}

		wg.Add(1)
		go func(fileHeader *multipart.FileHeader) {
			defer wg.Done()
			results <- m.processOne(fileHeader, userID, reportID)
		}(fileHeader)
	}

	wg.Wait()
	close(results)

	var feedURLs, thumbnailURLs, fullSizeURLs []string
	for result := range results {
		if result.Err != nil {
			log.Printf("media processing error for report %s: %v", reportID, result.Err)
			return nil, nil, nil, apiError.ErrInternalServerError
		}
		feedURLs = append(feedURLs, result.FeedURL)
		thumbnailURLs = append(thumbnailURLs, result.ThumbnailURL)
		fullSizeURLs = append(fullSizeURLs, result.FullSizeURL)
	}
	return feedURLs, thumbnailURLs, fullSizeURLs, nil
}

func (m *mediaService) processOne(fileHeader *multipart.FileHeader, userID uint, reportID string) imageResult {
	file, err := fileHeader.Open()
	if err != nil {
		return imageResult{Err: fmt.Errorf("failed to open %s: %w", fileHeader.Filename, err)}
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(file); err != nil {
		return imageResult{Err: fmt.Errorf("failed to read %s: %w", fileHeader.Filename, err)}
	}

	img, _, err := image.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return imageResult{Err: fmt.Errorf("failed to decode %s: %w", fileHeader.Filename, err)}
	}

	feedImg := imaging.Fill(img, 1080, 1080, imaging.Center, imaging.Lanczos)
	thumbnailImg := imaging.Resize(img, 161, 161, imaging.Lanczos)

	folder := fmt.Sprintf("reports/%d/%s", userID, reportID)
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))

	feedURL, err := m.uploadRendition(feedImg, folder, "feed", ext)
	if err != nil {
		return imageResult{Err: err}
	}
	thumbnailURL, err := m.uploadRendition(thumbnailImg, folder, "thumbnail", ext)
	if err != nil {
		return imageResult{Err: err}
	}
	fullSizeKey := fmt.Sprintf("%s/fullsize/%s", folder, generateUniqueFilename(ext))
	fullSizeURL, err := m.mediaRepo.UploadBytesToS3(buf.Bytes(), m.Config.AwsBucket, fullSizeKey, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		return imageResult{Err: err}
	}

	return imageResult{
		FeedURL:      feedURL,
		ThumbnailURL: thumbnailURL,
		FullSizeURL:  fullSizeURL,
	}
}

func (m *mediaService) uploadRendition(img image.Image, folder, rendition, ext string) (string, error) {
	var out bytes.Buffer
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		format = imaging.JPEG
	}
	if err := imaging.Encode(&out, img, format); err != nil {
		return "", fmt.Errorf("failed to encode %s rendition: %w", rendition, err)
	}
	key := fmt.Sprintf("%s/%s/%s", folder, rendition, generateUniqueFilename(ext))
	return m.mediaRepo.UploadBytesToS3(out.Bytes(), m.Config.AwsBucket, key, "image/"+strings.TrimPrefix(ext, "."))
}
