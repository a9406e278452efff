package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"gladiadores/internal/models/db_models"
	"gladiadores/internal/models/request_models"
	"gladiadores/internal/models/response_models"
	"gladiadores/internal/repositories"
	"gladiadores/pkg/utils"
)

const maxInterests = 5

// DefaultInterests seeds the catalogue shown on the last staircase step.
var DefaultInterests = []db_models.Interest{
	{Slug: "educacion", EsName: "Educación", Icon: "school"},
	{Slug: "salud", EsName: "Salud", Icon: "medical"},
	{Slug: "seguridad", EsName: "Seguridad ciudadana", Icon: "shield"},
	{Slug: "empleo", EsName: "Empleo", Icon: "briefcase"},
	{Slug: "deporte", EsName: "Deporte", Icon: "trophy"},
	{Slug: "medio-ambiente", EsName: "Medio ambiente", Icon: "leaf"},
	{Slug: "cultura", EsName: "Cultura", Icon: "music"},
	{Slug: "tecnologia", EsName: "Tecnología", Icon: "cpu"},
	{Slug: "transparencia", EsName: "Transparencia", Icon: "eye"},
	{Slug: "juventud", EsName: "Juventud", Icon: "users"},
}

type InterestServiceInterface interface {
	GetAllInterests(ctx context.Context, page int, pageSize int) ([]response_models.InterestResponse, error)
	CreateInterest(ctx context.Context, req request_models.CreateInterestRequest) (*response_models.InterestResponse, error)
	// ValidateSelection normalises slugs and checks the 1..5 known-slug rule.
	ValidateSelection(ctx context.Context, slugs []string) ([]string, error)
	Seed(ctx context.Context) error
}

type InterestService struct {
	interestRepo repositories.InterestRepositoryInterface
}

func NewInterestService(interestRepo repositories.InterestRepositoryInterface) InterestServiceInterface {
	return &InterestService{
		interestRepo: interestRepo,
	}
}

func toInterestResponse(i db_models.Interest) response_models.InterestResponse {
	return response_models.InterestResponse{
		ID:     i.ID.String(),
		Slug:   i.Slug,
		EsName: i.EsName,
		Icon:   i.Icon,
	}
}

func (t *InterestService) GetAllInterests(ctx context.Context, page int, pageSize int) ([]response_models.InterestResponse, error) {
	if err := utils.ValidatePage(page, pageSize); err != nil {
		return nil, err
	}
	interests, err := t.interestRepo.GetAllInterests(ctx, page, pageSize)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	out := make([]response_models.InterestResponse, 0, len(interests))
	for _, i := range interests {
		out = append(out, toInterestResponse(i))
	}
	return out, nil
}

func (t *InterestService) CreateInterest(ctx context.Context, req request_models.CreateInterestRequest) (*response_models.InterestResponse, error) {
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	existing, err := t.interestRepo.GetInterestBySlug(ctx, slug)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if existing != nil {
		return nil, utils.ErrInterestExists
	}

	interest := &db_models.Interest{Slug: slug, EsName: strings.TrimSpace(req.EsName), Icon: req.Icon}
	if err := t.interestRepo.CreateInterest(ctx, interest); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.ErrInterestExists
		}
		return nil, utils.ErrDatabaseError
	}
	out := toInterestResponse(*interest)
	return &out, nil
}

func (t *InterestService) ValidateSelection(ctx context.Context, slugs []string) ([]string, error) {
	seen := make(map[string]struct{}, len(slugs))
	clean := make([]string, 0, len(slugs))
	for _, s := range slugs {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		clean = append(clean, s)
	}
	if len(clean) == 0 || len(clean) > maxInterests {
		return nil, utils.ErrInvalidInterests
	}

	known, err := t.interestRepo.CountBySlugs(ctx, clean)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if known != int64(len(clean)) {
		return nil, utils.ErrInvalidInterests
	}
	return clean, nil
}

func (t *InterestService) Seed(ctx context.Context) error {
	rows := make([]db_models.Interest, len(DefaultInterests))
	copy(rows, DefaultInterests)
	if err := t.interestRepo.Seed(ctx, rows); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}
