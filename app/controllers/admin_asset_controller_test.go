package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PageTurnApp/PageTurn/app/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminTestApp(ac *AdminAssetController) *fiber.App {
	app := fiber.New()
	app.Post("/api/v1/admin/assets", ac.HandleRegisterAsset)
	app.Get("/api/v1/admin/assets", ac.HandleListAssets)
	app.Post("/api/v1/admin/assets/upload-url", ac.HandleUploadURL)
	return app
}

func TestHandleRegisterAsset(t *testing.T) {
	ac := NewAdminAssetController(&fakeAssetRepo{}, nil)
	app := adminTestApp(ac)

	resp, body := postJSON(t, app, "/api/v1/admin/assets", map[string]string{
		"asset_name": "book.pdf",
		"asset_url":  "https://cdn.example.com/book.pdf",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["success"])
}

func TestHandleRegisterAsset_MissingFields(t *testing.T) {
	ac := NewAdminAssetController(&fakeAssetRepo{}, nil)
	app := adminTestApp(ac)

	resp, _ := postJSON(t, app, "/api/v1/admin/assets", map[string]string{"asset_name": "book.pdf"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestHandleListAssets(t *testing.T) {
	ac := NewAdminAssetController(&fakeAssetRepo{latest: &models.BookAsset{
		ID:        uuid.NewString(),
		AssetName: "book.pdf",
		AssetURL:  "assets/2026/08/book.pdf",
	}}, nil)
	app := adminTestApp(ac)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/assets", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, jsonDecode(resp, &body))
	assets, ok := body["assets"].([]interface{})
	require.True(t, ok)
	assert.Len(t, assets, 1)
}

func TestHandleUploadURL_StorageDisabled(t *testing.T) {
	ac := NewAdminAssetController(&fakeAssetRepo{}, nil)
	app := adminTestApp(ac)

	resp, _ := postJSON(t, app, "/api/v1/admin/assets/upload-url", map[string]string{"file_name": "book.pdf"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
