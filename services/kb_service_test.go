package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpdesk/models"
)

func TestIncrementViewsAccumulates(t *testing.T) {
	db := testDB(t)
	svc := NewKBService(db)

	article := models.KBArticle{Title: "Resetting your password", Slug: "reset-password"}
	require.NoError(t, svc.CreateArticle(&article))

	for i := 0; i < 10; i++ {
		require.NoError(t, svc.IncrementViews(article.ID))
	}

	got, err := svc.GetArticle(article.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Views)
}

func TestRecordFeedback(t *testing.T) {
	db := testDB(t)
	svc := NewKBService(db)

	article := models.KBArticle{Title: "Billing FAQ", Slug: "billing-faq"}
	require.NoError(t, svc.CreateArticle(&article))

	require.NoError(t, svc.RecordFeedback(article.ID, true))
	require.NoError(t, svc.RecordFeedback(article.ID, true))
	require.NoError(t, svc.RecordFeedback(article.ID, false))

	got, err := svc.GetArticle(article.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.HelpfulYes)
	assert.Equal(t, 1, got.HelpfulNo)

	assert.ErrorIs(t, svc.RecordFeedback(9999, true), ErrArticleNotFound)
}

func TestListArticlesHidesDrafts(t *testing.T) {
	db := testDB(t)
	svc := NewKBService(db)

	require.NoError(t, svc.CreateArticle(&models.KBArticle{Title: "Published", Slug: "published"}))
	require.NoError(t, svc.CreateArticle(&models.KBArticle{Title: "Draft", Slug: "draft", Status: "draft"}))

	public, err := svc.ListArticles(0, "", false)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "Published", public[0].Title)

	all, err := svc.ListArticles(0, "", true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeleteCategoryDetachesArticles(t *testing.T) {
	db := testDB(t)
	svc := NewKBService(db)

	cat := models.KBCategory{Name: "Getting started", Slug: "getting-started"}
	require.NoError(t, svc.CreateCategory(&cat))

	article := models.KBArticle{Title: "Hello", Slug: "hello", CategoryID: &cat.ID}
	require.NoError(t, svc.CreateArticle(&article))

	require.NoError(t, svc.DeleteCategory(cat.ID))

	got, err := svc.GetArticle(article.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
}
