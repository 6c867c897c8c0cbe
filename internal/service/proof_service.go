package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/smart-student-hub-api/internal/dto"
	"github.com/noah-isme/smart-student-hub-api/internal/models"
	"github.com/noah-isme/smart-student-hub-api/internal/observability"
	"github.com/noah-isme/smart-student-hub-api/internal/repository"
)

// MaxProofBytes is the largest proof document accepted.
const MaxProofBytes int64 = 5 * 1024 * 1024

const proofField = "proof"

var allowedProofTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/jpg":       true,
	"application/pdf": true,
}

// BlobStore persists proof documents and returns a retrievable URL.
type BlobStore interface {
	Put(ctx context.Context, name, contentType string, reader io.Reader) (string, error)
}

// ProofService validates proof documents against the file policy and stores them.
type ProofService interface {
	Upload(ctx context.Context, identity *Identity, file *multipart.FileHeader) (dto.UploadResponse, error)
}

type proofService struct {
	storage BlobStore
	repo    repository.UploadRepository
	logger  zerolog.Logger
	maxSize int64
	tracer  trace.Tracer
}

// NewProofService constructs a proof upload service. maxSizeMB above 5 is capped by the file policy.
func NewProofService(storage BlobStore, repo repository.UploadRepository, maxSizeMB int, logger zerolog.Logger) ProofService {
	maxSize := int64(maxSizeMB) * 1024 * 1024
	if maxSize <= 0 || maxSize > MaxProofBytes {
		maxSize = MaxProofBytes
	}

	return &proofService{
		storage: storage,
		repo:    repo,
		logger:  logger.With().Str("component", "proof_service").Logger(),
		maxSize: maxSize,
		tracer:  observability.Tracer("service/proof"),
	}
}

// CheckFilePolicy enforces the allowed types and the size ceiling before any upload happens.
func CheckFilePolicy(contentType string, size, maxSize int64) error {
	if size > maxSize {
		return newValidationError(proofField, fmt.Sprintf("must be at most %d bytes", maxSize))
	}

	if !allowedProofTypes[normalizeContentType(contentType)] {
		return newValidationError(proofField, "must be a JPEG, PNG or PDF file")
	}

	return nil
}

func (s *proofService) Upload(ctx context.Context, identity *Identity, file *multipart.FileHeader) (dto.UploadResponse, error) {
	if err := Authorize(identity, ActionUploadProof); err != nil {
		return dto.UploadResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "proof.upload")
	defer span.End()

	start := time.Now()
	defer func() {
		observability.UploadLatency().Observe(time.Since(start).Seconds())
	}()

	if file == nil {
		span.SetStatus(codes.Error, "validation failed")
		return dto.UploadResponse{}, newValidationError(proofField, "is required")
	}

	span.SetAttributes(
		attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("upload.request_size", file.Size),
	)

	declared := normalizeContentType(file.Header.Get("Content-Type"))
	if declared != "" && declared != "application/octet-stream" {
		if err := CheckFilePolicy(declared, file.Size, s.maxSize); err != nil {
			return dto.UploadResponse{}, s.reject(span, err)
		}
	} else if file.Size > s.maxSize {
		return dto.UploadResponse{}, s.reject(span, CheckFilePolicy(declared, file.Size, s.maxSize))
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return dto.UploadResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return dto.UploadResponse{}, err
	}

	sniffed := normalizeContentType(mimetype.Detect(buf.Bytes()).String())
	span.SetAttributes(attribute.String("upload.detected_mime", sniffed))
	if err := CheckFilePolicy(sniffed, int64(buf.Len()), s.maxSize); err != nil {
		return dto.UploadResponse{}, s.reject(span, err)
	}

	contentType := declared
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = sniffed
	}

	sum := sha256.Sum256(buf.Bytes())
	checksum := hex.EncodeToString(sum[:])
	sanitizedName := sanitizeFileName(file.Filename)

	existing, err := s.repo.FindByChecksum(ctx, identity.UserID, checksum)
	switch {
	case err == nil:
		span.SetAttributes(attribute.Bool("upload.reused", true))
		span.SetStatus(codes.Ok, "reused")
		s.logger.Debug().Str("user_id", identity.UserID).Str("checksum", checksum).Msg("proof already stored")
		return newUploadResponse(existing), nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return dto.UploadResponse{}, err
	}

	url, err := s.storage.Put(ctx, sanitizedName, contentType, bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.UploadRejected().WithLabelValues("storage").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		s.logger.Error().Err(err).Str("file_name", sanitizedName).Msg("blob store rejected proof")
		return dto.UploadResponse{}, fmt.Errorf("%w: %v", ErrUpload, err)
	}

	record := models.UploadRecord{
		UserID:    identity.UserID,
		FileName:  sanitizedName,
		URL:       url,
		MimeType:  contentType,
		SizeBytes: int64(buf.Len()),
		Checksum:  checksum,
	}
	if err := s.repo.Create(ctx, &record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.UploadResponse{}, err
	}

	observability.UploadRequests().WithLabelValues(contentType).Inc()
	span.SetStatus(codes.Ok, "stored")

	return newUploadResponse(record), nil
}

func newUploadResponse(record models.UploadRecord) dto.UploadResponse {
	return dto.UploadResponse{
		URL:       record.URL,
		FileName:  record.FileName,
		MimeType:  record.MimeType,
		SizeBytes: record.SizeBytes,
		Checksum:  record.Checksum,
	}
}

func (s *proofService) reject(span trace.Span, err error) error {
	reason := "type"
	var validationErr *ValidationError
	if errors.As(err, &validationErr) && strings.HasPrefix(validationErr.Reason, "must be at most") {
		reason = "size"
	}

	observability.UploadRejected().WithLabelValues(reason).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, "policy violation")
	return err
}

func normalizeContentType(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if idx := strings.Index(value, ";"); idx >= 0 {
		value = strings.TrimSpace(value[:idx])
	}
	return value
}

func sanitizeFileName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("proof-%d", time.Now().Unix())
	}

	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".bin"
	}
	return base + ext
}
