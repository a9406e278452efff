package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gladiadores/internal/infra"
	resp "gladiadores/internal/models/response_models"
	"gladiadores/internal/repositories"
	"gladiadores/pkg/utils"
)

const (
	DocCedulaFront = "cedula-front"
	DocCedulaBack  = "cedula-back"
	DocVote        = "voto"
	DocDonation    = "donacion"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// Upload is a file received from the client; Size is the declared length in bytes.
type Upload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

type DocumentServiceInterface interface {
	// Store validates the upload and writes it under <account>/<kind>-<uuid>.<ext>.
	Store(ctx context.Context, accountID uuid.UUID, kind string, up Upload) (string, error)
	Delete(ctx context.Context, key string) error
	PresignURL(ctx context.Context, key string) (string, error)
	GetOwnDocumentURLs(ctx context.Context, accountID uuid.UUID) (*resp.DocumentURLs, error)
}

type DocumentService struct {
	store            infra.ObjectStore
	registrationRepo repositories.RegistrationRepository
	maxBytes         int64
	presignTTL       time.Duration
	log              *zap.Logger
}

func NewDocumentService(store infra.ObjectStore, registrationRepo repositories.RegistrationRepository, maxUploadMB int64, presignTTL time.Duration, log *zap.Logger) DocumentServiceInterface {
	return &DocumentService{
		store:            store,
		registrationRepo: registrationRepo,
		maxBytes:         maxUploadMB << 20,
		presignTTL:       presignTTL,
		log:              log,
	}
}

func (d *DocumentService) Store(ctx context.Context, accountID uuid.UUID, kind string, up Upload) (string, error) {
	if up.Body == nil || up.Size <= 0 || up.Size > d.maxBytes {
		return "", utils.ErrInvalidUpload
	}

	// Trust the bytes, not the client's Content-Type header.
	br := bufio.NewReaderSize(io.LimitReader(up.Body, up.Size), 512)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return "", utils.ErrInvalidUpload
	}
	contentType := http.DetectContentType(head)
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", utils.ErrInvalidUpload
	}

	key := fmt.Sprintf("%s/%s-%s.%s", accountID, kind, uuid.NewString(), ext)
	if err := d.store.Put(ctx, key, contentType, br, up.Size); err != nil {
		d.log.Error("upload failed", zap.String("key", key), zap.Error(err))
		return "", utils.ErrStorageError
	}
	return key, nil
}

func (d *DocumentService) Delete(ctx context.Context, key string) error {
	if err := d.store.Delete(ctx, key); err != nil {
		d.log.Warn("delete failed", zap.String("key", key), zap.Error(err))
		return utils.ErrStorageError
	}
	return nil
}

func (d *DocumentService) PresignURL(ctx context.Context, key string) (string, error) {
	u, err := d.store.PresignGet(ctx, key, d.presignTTL)
	if err != nil {
		return "", utils.ErrStorageError
	}
	return u, nil
}

func (d *DocumentService) GetOwnDocumentURLs(ctx context.Context, accountID uuid.UUID) (*resp.DocumentURLs, error) {
	reg, err := d.registrationRepo.FindByAccount(ctx, accountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if reg == nil {
		return nil, utils.ErrRegistrationNotFound
	}

	out := &resp.DocumentURLs{ExpiresIn: int64(d.presignTTL.Seconds())}
	for _, doc := range []struct {
		key *string
		dst *string
	}{
		{reg.DocumentFrontKey, &out.CedulaFront},
		{reg.DocumentBackKey, &out.CedulaBack},
		{reg.VoteEvidenceKey, &out.VoteEvidence},
	} {
		if doc.key == nil {
			continue
		}
		u, err := d.PresignURL(ctx, *doc.key)
		if err != nil {
			return nil, err
		}
		*doc.dst = u
	}
	return out, nil
}
