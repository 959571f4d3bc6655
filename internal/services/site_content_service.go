package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"mlmadmin/internal/models/db_models"
	"mlmadmin/internal/models/request_models"
	resp "mlmadmin/internal/models/response_models"
	"mlmadmin/internal/repositories"
	"mlmadmin/pkg/cache"
	"mlmadmin/pkg/utils"
)

const (
	publicContentCacheKey = "site:public"
	publicContentTTL      = 10 * time.Minute
)

var blockKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

type SiteContentServiceInterface interface {
	GetSettings(ctx context.Context) (*resp.SiteSettingsResponse, error)
	UpdateSettings(ctx context.Context, request request_models.SiteSettingsRequest) (*resp.SiteSettingsResponse, error)

	ListBlocks(ctx context.Context) ([]resp.LandingBlockResponse, error)
	UpsertBlock(ctx context.Context, key string, request request_models.LandingBlockRequest) (*resp.LandingBlockResponse, error)
	DeleteBlock(ctx context.Context, key string) error
	ReorderBlocks(ctx context.Context, keys []string) ([]resp.LandingBlockResponse, error)

	// PublicContent returns settings plus published blocks, served from cache
	// when available.
	PublicContent(ctx context.Context) (*resp.SiteContent, error)
}

type SiteContentService struct {
	repo  repositories.SiteContentRepository
	cache cache.Store
}

func NewSiteContentService(repo repositories.SiteContentRepository, store cache.Store) SiteContentServiceInterface {
	return &SiteContentService{repo: repo, cache: store}
}

func (s *SiteContentService) GetSettings(ctx context.Context) (*resp.SiteSettingsResponse, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	out := toSettingsResponse(settings)
	return &out, nil
}

func (s *SiteContentService) UpdateSettings(ctx context.Context, request request_models.SiteSettingsRequest) (*resp.SiteSettingsResponse, error) {
	settings := &db_models.SiteSettings{
		SiteName:       strings.TrimSpace(request.SiteName),
		LogoURL:        request.LogoURL,
		FaviconURL:     request.FaviconURL,
		PrimaryColor:   strings.ToLower(request.PrimaryColor),
		SecondaryColor: strings.ToLower(request.SecondaryColor),
		SupportEmail:   request.SupportEmail,
		FooterText:     request.FooterText,
	}
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return nil, utils.ErrDatabaseError
	}
	s.invalidate(ctx)

	out := toSettingsResponse(settings)
	return &out, nil
}

func (s *SiteContentService) ListBlocks(ctx context.Context) ([]resp.LandingBlockResponse, error) {
	blocks, err := s.repo.ListBlocks(ctx, false)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	return toBlockResponses(blocks), nil
}

func (s *SiteContentService) UpsertBlock(ctx context.Context, key string, request request_models.LandingBlockRequest) (*resp.LandingBlockResponse, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if !blockKeyPattern.MatchString(key) {
		return nil, utils.ErrInvalidInput
	}

	block, err := s.repo.FindBlockByKey(ctx, key)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if block == nil {
		block = &db_models.LandingBlock{Key: key}
	}

	block.Title = strings.TrimSpace(request.Title)
	block.Subtitle = request.Subtitle
	block.Body = request.Body
	block.ImageURL = request.ImageURL
	block.CTAText = request.CTAText
	block.CTAURL = request.CTAURL
	block.Position = request.Position
	block.IsPublished = request.IsPublished

	if err := s.repo.SaveBlock(ctx, block); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, utils.ErrDuplicateRecord
		}
		return nil, utils.ErrDatabaseError
	}
	s.invalidate(ctx)

	out := toBlockResponse(block)
	return &out, nil
}

func (s *SiteContentService) DeleteBlock(ctx context.Context, key string) error {
	if err := s.repo.DeleteBlock(ctx, key); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.RecordNotFound
		}
		return utils.ErrDatabaseError
	}
	s.invalidate(ctx)
	return nil
}

// ReorderBlocks assigns positions following keys. Every key must exist and
// appear once.
func (s *SiteContentService) ReorderBlocks(ctx context.Context, keys []string) ([]resp.LandingBlockResponse, error) {
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			return nil, utils.ErrInvalidInput
		}
		seen[k] = struct{}{}
	}

	if err := s.repo.SetPositions(ctx, keys); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.RecordNotFound
		}
		return nil, utils.ErrDatabaseError
	}
	s.invalidate(ctx)
	return s.ListBlocks(ctx)
}

func (s *SiteContentService) PublicContent(ctx context.Context) (*resp.SiteContent, error) {
	var cached resp.SiteContent
	if hit, err := s.cache.Get(ctx, publicContentCacheKey, &cached); err != nil {
		logrus.WithError(err).Warn("site content cache read failed")
	} else if hit {
		return &cached, nil
	}

	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	blocks, err := s.repo.ListBlocks(ctx, true)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	content := &resp.SiteContent{
		Settings: toSettingsResponse(settings),
		Blocks:   toBlockResponses(blocks),
	}
	if err := s.cache.Set(ctx, publicContentCacheKey, content, publicContentTTL); err != nil {
		logrus.WithError(err).Warn("site content cache write failed")
	}
	return content, nil
}

func (s *SiteContentService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, publicContentCacheKey); err != nil {
		logrus.WithError(err).Warn("site content cache invalidation failed")
	}
}

func toSettingsResponse(s *db_models.SiteSettings) resp.SiteSettingsResponse {
	return resp.SiteSettingsResponse{
		SiteName:       s.SiteName,
		LogoURL:        s.LogoURL,
		FaviconURL:     s.FaviconURL,
		PrimaryColor:   s.PrimaryColor,
		SecondaryColor: s.SecondaryColor,
		SupportEmail:   s.SupportEmail,
		FooterText:     s.FooterText,
		UpdatedAt:      s.UpdatedAt,
	}
}

func toBlockResponse(b *db_models.LandingBlock) resp.LandingBlockResponse {
	return resp.LandingBlockResponse{
		Key:         b.Key,
		Title:       b.Title,
		Subtitle:    b.Subtitle,
		Body:        b.Body,
		ImageURL:    b.ImageURL,
		CTAText:     b.CTAText,
		CTAURL:      b.CTAURL,
		Position:    b.Position,
		IsPublished: b.IsPublished,
	}
}

func toBlockResponses(blocks []db_models.LandingBlock) []resp.LandingBlockResponse {
	out := make([]resp.LandingBlockResponse, 0, len(blocks))
	for i := range blocks {
		out = append(out, toBlockResponse(&blocks[i]))
	}
	return out
}
