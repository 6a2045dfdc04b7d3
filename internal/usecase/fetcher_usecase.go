package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/user/pdfscraper-service/internal/entity"
	"github.com/user/pdfscraper-service/internal/repository"
	"github.com/user/pdfscraper-service/pkg/metrics"
	"github.com/user/pdfscraper-service/pkg/utils"
)

// PDFFetcher downloads one PDF and describes it.
type PDFFetcher interface {
	// Fetch never fails: a download error yields a degraded record with nil
	// FileSize and FilePath. destinationDir must already exist.
	Fetch(ctx context.Context, link entity.PdfLink, destinationDir string) entity.PdfMetadata
}

type pdfFetcherUseCase struct {
	client repository.HTTPFetcher
}

// NewPDFFetcher creates a new instance of the PDF fetcher use case.
func NewPDFFetcher(client repository.HTTPFetcher) PDFFetcher {
	return &pdfFetcherUseCase{client: client}
}

func (uc *pdfFetcherUseCase) Fetch(ctx context.Context, link entity.PdfLink, destinationDir string) entity.PdfMetadata {
	record := entity.PdfMetadata{URL: link.Href, Title: link.AnchorText}

	size, path, err := uc.download(ctx, link.Href, destinationDir)
	if err != nil {
		slog.Warn("PDF download failed, recording degraded entry", "url", link.Href, "error", err)
		metrics.PDFFetchesTotal.WithLabelValues("degraded").Inc()
		return record
	}

	metrics.PDFFetchesTotal.WithLabelValues("ok").Inc()
	record.FileSize = &size
	record.FilePath = &path
	return record
}

// download returns the declared size and the final file path.
func (uc *pdfFetcherUseCase) download(ctx context.Context, href, dir string) (int64, string, error) {
	header, err := uc.client.Head(ctx, href)
	if err != nil {
		return 0, "", fmt.Errorf("HEAD %s: %w", href, err)
	}
	size := declaredLength(header)

	// Written under a unique temp name first so a failed or concurrent
	// download of the same URL never leaves a partial file at the final path.
	tmp, err := os.CreateTemp(dir, utils.HashURL(href)+"-*.part")
	if err != nil {
		return 0, "", fmt.Errorf("create temp file: %w", err)
	}
	n, getErr := uc.client.Get(ctx, href, tmp)
	closeErr := tmp.Close()
	if getErr != nil {
		os.Remove(tmp.Name())
		return 0, "", fmt.Errorf("GET %s: %w", href, getErr)
	}
	if closeErr != nil {
		os.Remove(tmp.Name())
		return 0, "", fmt.Errorf("close temp file: %w", closeErr)
	}

	finalPath := filepath.Join(dir, utils.PDFFileName(href))
	if err := os.Rename(tmp.Name(), finalPath); err != nil {
		os.Remove(tmp.Name())
		return 0, "", fmt.Errorf("rename into place: %w", err)
	}

	metrics.PDFBytesTotal.Add(float64(n))
	slog.Debug("Downloaded PDF", "url", href, "path", finalPath, "declared_size", size, "bytes", n)
	return size, finalPath, nil
}

// declaredLength reads Content-Length, treating a missing or invalid value as 0.
func declaredLength(h http.Header) int64 {
	n, err := strconv.ParseInt(h.Get("Content-Length"), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
