package service_test

import (
	"github.com/jainam01/FOURKID-sub000/internal/domain"
	"github.com/jainam01/FOURKID-sub000/internal/repository"
	"github.com/jainam01/FOURKID-sub000/internal/service"
)

func (s *IntegrationTestSuite) TestCreateCategory() {
	category, err := s.CatalogService.CreateCategory(s.Ctx, &domain.CategoryInput{
		Name: " Ethnic Wear ",
		Slug: "Ethnic-Wear",
	})
	s.Require().NoError(err)
	s.Require().Equal("Ethnic Wear", category.Name)
	s.Require().Equal("ethnic-wear", category.Slug)

	got, err := s.CatalogService.GetCategoryBySlug(s.Ctx, "ETHNIC-WEAR")
	s.Require().NoError(err)
	s.Require().Equal(category.ID, got.ID)

	_, err = s.CatalogService.CreateCategory(s.Ctx, &domain.CategoryInput{Name: "Ethnic", Slug: "ethnic-wear"})
	s.Require().ErrorIs(err, repository.ErrCategoryAlreadyExists)

	_, err = s.CatalogService.CreateCategory(s.Ctx, &domain.CategoryInput{Name: "Ethnic Wear", Slug: "ethnic"})
	s.Require().ErrorIs(err, repository.ErrCategoryAlreadyExists)

	s.Require().Equal(1, s.CountRows(`SELECT COUNT(*) FROM categories`))
}

func (s *IntegrationTestSuite) TestCreateCategory_InvalidSlug() {
	for _, slug := range []string{"", "kids wear", "kids--wear", "-kids", "kids_wear"} {
		_, err := s.CatalogService.CreateCategory(s.Ctx, &domain.CategoryInput{Name: "Kids", Slug: slug})
		s.Require().True(service.IsValidationError(err), slug)
	}

	s.Require().Equal(0, s.CountRows(`SELECT COUNT(*) FROM categories`))
}

func (s *IntegrationTestSuite) TestListBanners_ActiveByPosition() {
	create := func(title string, active bool, position int32) *domain.Banner {
		banner, err := s.CatalogService.CreateBanner(s.Ctx, &domain.BannerInput{
			Title:    title,
			Images:   []string{"https://cdn.example.com/" + title + ".jpg"},
			Active:   active,
			Position: position,
		})
		s.Require().NoError(err)
		return banner
	}

	third := create("sale", true, 3)
	first := create("festive", true, 1)
	create("hidden", false, 2)

	s.Require().Equal("hero", first.Type)

	active, err := s.CatalogService.ListBanners(s.Ctx, true)
	s.Require().NoError(err)
	s.Require().Len(active, 2)
	s.Require().Equal(first.ID, active[0].ID)
	s.Require().Equal(third.ID, active[1].ID)

	all, err := s.CatalogService.ListBanners(s.Ctx, false)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Require().Equal("hidden", all[1].Title)

	_, err = s.CatalogService.CreateBanner(s.Ctx, &domain.BannerInput{Title: "empty"})
	s.Require().True(service.IsValidationError(err))
}
