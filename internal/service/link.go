package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JankoLoL/Get-a-pic/internal/img"
	"github.com/JankoLoL/Get-a-pic/internal/model"
	"github.com/JankoLoL/Get-a-pic/internal/repository"
	"github.com/JankoLoL/Get-a-pic/internal/storage"
)

var (
	ErrLinkNotAllowed = errors.New("plan does not allow expiring links")
	ErrInvalidExpiry  = errors.New("expiration_seconds out of range")
	// ErrLinkNotFound covers unknown and expired tokens alike, so a caller
	// cannot probe which tokens once existed.
	ErrLinkNotFound = errors.New("expiring link not found")
)

// tokenInsertRetries bounds regeneration on token collision. At 256 bits of
// entropy a collision is practically unreachable.
const tokenInsertRetries = 3

// LinkService mints and redeems expiring links: opaque, unguessable tokens
// granting unauthenticated time-boxed retrieval of one image's original.
type LinkService struct {
	linkRepo  repository.ExpiringLinkRepository
	imageRepo repository.ImageRepository
	storage   storage.Storage
	appURL    string

	ttlMin time.Duration
	ttlMax time.Duration
	// requireOwnership restricts issuance to the target image's owner.
	requireOwnership bool

	// now is swapped in tests to simulate expiry.
	now func() time.Time
}

func NewLinkService(
	linkRepo repository.ExpiringLinkRepository,
	imageRepo repository.ImageRepository,
	store storage.Storage,
	appURL string,
	ttlMin, ttlMax time.Duration,
	requireOwnership bool,
) *LinkService {
	return &LinkService{
		linkRepo:         linkRepo,
		imageRepo:        imageRepo,
		storage:          store,
		appURL:           strings.TrimSuffix(appURL, "/"),
		ttlMin:           ttlMin,
		ttlMax:           ttlMax,
		requireOwnership: requireOwnership,
		now:              time.Now,
	}
}

// generateToken returns 32 bytes from a CSPRNG, hex encoded (256 bits).
func generateToken() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// URL returns the fully qualified redemption URL for a link.
func (s *LinkService) URL(link *model.ExpiringLink) string {
	return fmt.Sprintf("%s/api/expiring-links/%s", s.appURL, link.Token)
}

// Issue mints a link for the image, valid for expirationSeconds from now.
// Validation runs before any persistence. A token collision on insert is
// handled by regenerating, not surfaced.
func (s *LinkService) Issue(ctx context.Context, caller *model.User, ent Entitlement, imageID string, expirationSeconds int) (*model.ExpiringLink, error) {
	if !ent.CanIssueLink {
		return nil, ErrLinkNotAllowed
	}

	ttl := time.Duration(expirationSeconds) * time.Second
	if ttl < s.ttlMin || ttl > s.ttlMax {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidExpiry,
			expirationSeconds, int(s.ttlMin.Seconds()), int(s.ttlMax.Seconds()))
	}

	image, err := s.imageRepo.ByID(imageID)
	if err != nil {
		return nil, err
	}
	if s.requireOwnership && image.UserID != caller.ID {
		return nil, repository.ErrImageNotFound
	}

	for attempt := 0; attempt < tokenInsertRetries; attempt++ {
		token, err := generateToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate token: %w", err)
		}

		link := &model.ExpiringLink{
			ImageID:   image.ID,
			Token:     token,
			ExpiresAt: s.now().Add(ttl),
		}
		err = s.linkRepo.Create(link)
		if errors.Is(err, repository.ErrDuplicateToken) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create expiring link: %w", err)
		}

		return link, nil
	}

	return nil, errors.New("failed to create expiring link: token collisions exhausted retries")
}

// Redeem resolves an active token to the bound image's original bytes and
// content type. Expiry is re-evaluated here, never cached, and an expired
// token answers exactly like a token that never existed. The token is not
// consumed; it stays redeemable until its natural expiry.
func (s *LinkService) Redeem(ctx context.Context, token string) ([]byte, string, error) {
	link, err := s.linkRepo.ByToken(token)
	if errors.Is(err, repository.ErrLinkNotFound) {
		return nil, "", ErrLinkNotFound
	}
	if err != nil {
		return nil, "", err
	}

	if !s.now().Before(link.ExpiresAt) {
		return nil, "", ErrLinkNotFound
	}

	image, err := s.imageRepo.ByID(link.ImageID)
	if err != nil {
		return nil, "", err
	}

	// An unrecognized stored format is a server-side inconsistency, not a
	// client error.
	contentType, err := img.ContentType(image.Ext())
	if err != nil {
		return nil, "", err
	}

	data, err := s.storage.Read(ctx, image.OriginalPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read original: %w", err)
	}

	return data, contentType, nil
}
