package services_test

import (
	"testing"
	"time"

	"todo-manager/internal/database"
	"todo-manager/internal/models"
	"todo-manager/internal/services"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type CategoryServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *services.CategoryServiceImpl

	owner *models.User
	other *models.User
}

func (suite *CategoryServiceTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	// An in-memory sqlite database exists per connection; pin the pool to one.
	sqlDB, err := db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	suite.Require().NoError(database.Migrate(db))

	suite.db = db
	suite.service = services.NewCategoryService()

	suite.owner = &models.User{Name: "Owner", Email: "owner@example.com", Password: "hash"}
	suite.Require().NoError(suite.db.Create(suite.owner).Error)
	suite.other = &models.User{Name: "Other", Email: "other@example.com", Password: "hash"}
	suite.Require().NoError(suite.db.Create(suite.other).Error)
}

func (suite *CategoryServiceTestSuite) TestListScopedToOwnerNewestFirst() {
	older, err := suite.service.Create(suite.db, suite.owner, services.CategoryInput{Name: "Old", Color: "#111111"})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.db.Model(older).Update("created_at", time.Now().Add(-time.Hour)).Error)
	_, err = suite.service.Create(suite.db, suite.owner, services.CategoryInput{Name: "New", Color: "#222222"})
	suite.Require().NoError(err)
	_, err = suite.service.Create(suite.db, suite.other, services.CategoryInput{Name: "Foreign", Color: "#333333"})
	suite.Require().NoError(err)

	categories, err := suite.service.List(suite.db, suite.owner.ID)
	suite.Require().NoError(err)
	suite.Require().Len(categories, 2)
	suite.Equal("New", categories[0].Name)
	suite.Equal("Old", categories[1].Name)
}

func (suite *CategoryServiceTestSuite) TestGetByOtherUserForbidden() {
	category, err := suite.service.Create(suite.db, suite.owner, services.CategoryInput{Name: "Mine", Color: "#111111"})
	suite.Require().NoError(err)

	_, err = suite.service.GetByID(suite.db, suite.other, category.ID)
	suite.ErrorIs(err, models.ErrForbidden)
}

func (suite *CategoryServiceTestSuite) TestGetMissingNotFound() {
	_, err := suite.service.GetByID(suite.db, suite.owner, uuid.Must(uuid.NewV4()))
	suite.ErrorIs(err, models.ErrNotFound)
}

func (suite *CategoryServiceTestSuite) TestPartialUpdate() {
	category, err := suite.service.Create(suite.db, suite.owner, services.CategoryInput{Name: "Work", Color: "#111111"})
	suite.Require().NoError(err)

	color := "#00ff00"
	updated, err := suite.service.Update(suite.db, suite.owner, category.ID, services.CategoryPatch{Color: &color})
	suite.Require().NoError(err)
	suite.Equal("Work", updated.Name)
	suite.Equal("#00ff00", updated.Color)
}

func (suite *CategoryServiceTestSuite) TestDeleteDetachesTodosInsteadOfDeletingThem() {
	category, err := suite.service.Create(suite.db, suite.owner, services.CategoryInput{Name: "Work", Color: "#111111"})
	suite.Require().NoError(err)

	todo := models.Todo{UserID: suite.owner.ID, Title: "Report", CategoryID: &category.ID}
	suite.Require().NoError(suite.db.Create(&todo).Error)

	suite.Require().NoError(suite.service.Delete(suite.db, suite.owner, category.ID))

	var kept models.Todo
	suite.Require().NoError(suite.db.First(&kept, "id = ?", todo.ID).Error)
	suite.Nil(kept.CategoryID, "todo falls back to uncategorized")

	var count int64
	suite.Require().NoError(suite.db.Model(&models.Category{}).Count(&count).Error)
	suite.Zero(count)
}

func (suite *CategoryServiceTestSuite) TestDeleteByOtherUserForbidden() {
	category, err := suite.service.Create(suite.db, suite.owner, services.CategoryInput{Name: "Work", Color: "#111111"})
	suite.Require().NoError(err)

	suite.ErrorIs(suite.service.Delete(suite.db, suite.other, category.ID), models.ErrForbidden)
}

func TestCategoryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CategoryServiceTestSuite))
}
