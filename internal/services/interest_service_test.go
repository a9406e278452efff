package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gladiadores/internal/models/db_models"
	"gladiadores/pkg/utils"
)

type fakeInterestRepo struct {
	bySlug map[string]db_models.Interest
}

func newFakeInterestRepo() *fakeInterestRepo {
	f := &fakeInterestRepo{bySlug: map[string]db_models.Interest{}}
	for _, i := range DefaultInterests {
		f.bySlug[i.Slug] = i
	}
	return f
}

func (f *fakeInterestRepo) CreateInterest(_ context.Context, interest *db_models.Interest) error {
	f.bySlug[interest.Slug] = *interest
	return nil
}

func (f *fakeInterestRepo) GetInterestBySlug(_ context.Context, slug string) (*db_models.Interest, error) {
	if i, ok := f.bySlug[slug]; ok {
		return &i, nil
	}
	return nil, nil
}

func (f *fakeInterestRepo) GetAllInterests(context.Context, int, int) ([]db_models.Interest, error) {
	out := make([]db_models.Interest, 0, len(f.bySlug))
	for _, i := range f.bySlug {
		out = append(out, i)
	}
	return out, nil
}

func (f *fakeInterestRepo) CountBySlugs(_ context.Context, slugs []string) (int64, error) {
	var n int64
	for _, s := range slugs {
		if _, ok := f.bySlug[s]; ok {
			n++
		}
	}
	return n, nil
}

func (f *fakeInterestRepo) Seed(context.Context, []db_models.Interest) error { return nil }

func TestValidateSelection(t *testing.T) {
	ctx := context.Background()
	svc := NewInterestService(newFakeInterestRepo())

	got, err := svc.ValidateSelection(ctx, []string{" Salud ", "deporte", "salud", "", "DEPORTE"})
	require.NoError(t, err)
	assert.Equal(t, []string{"salud", "deporte"}, got, "duplicates and blanks are dropped, order kept")

	got, err = svc.ValidateSelection(ctx, []string{"educacion", "salud", "seguridad", "empleo", "deporte", "salud"})
	require.NoError(t, err, "five distinct slugs after dedupe")
	assert.Len(t, got, 5)

	bad := map[string][]string{
		"none":    nil,
		"blank":   {"  "},
		"six":     {"educacion", "salud", "seguridad", "empleo", "deporte", "cultura"},
		"unknown": {"salud", "astrologia"},
	}
	for name, slugs := range bad {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateSelection(ctx, slugs)
			assert.ErrorIs(t, err, utils.ErrInvalidInterests)
		})
	}
}
