package controllers

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/PageTurnApp/PageTurn/app/models"
	"github.com/PageTurnApp/PageTurn/app/repository"
	"github.com/PageTurnApp/PageTurn/internal/pkg/assets"
	"github.com/gofiber/fiber/v2"
)

const adminAssetTimeout = 10 * time.Second

// AdminAssetController manages the downloadable book assets. All routes
// sit behind the API key middleware.
type AdminAssetController struct {
	assetRepo repository.BookAssetRepository
	store     *assets.Store
}

func NewAdminAssetController(assetRepo repository.BookAssetRepository, store *assets.Store) *AdminAssetController {
	return &AdminAssetController{assetRepo: assetRepo, store: store}
}

var adminAssetController *AdminAssetController

func InitializeAdminAssetController() {
	var store *assets.Store
	cfg, err := assets.LoadConfig()
	if err != nil {
		log.Printf("[AdminAssets] asset storage config invalid, uploads disabled: %v", err)
	} else if cfg.IsEnabled() {
		store, err = assets.NewStore(cfg)
		if err != nil {
			log.Printf("[AdminAssets] asset store setup failed, uploads disabled: %v", err)
		}
	}
	adminAssetController = NewAdminAssetController(
		repository.GetGlobalFactory().GetBookAssetRepository(),
		store,
	)
}

func GetAdminAssetController() *AdminAssetController {
	if adminAssetController == nil {
		InitializeAdminAssetController()
	}
	return adminAssetController
}

// SetAdminAssetController replaces the global instance. Test use only.
func SetAdminAssetController(c *AdminAssetController) {
	adminAssetController = c
}

type registerAssetRequest struct {
	AssetName string `json:"asset_name"`
	AssetURL  string `json:"asset_url"`
}

// HandleRegisterAsset implements POST /api/v1/admin/assets. The URL may be
// an S3 object key (served via presigned link later) or a full external
// URL (served as-is).
func (ac *AdminAssetController) HandleRegisterAsset(c *fiber.Ctx) error {
	var req registerAssetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
		})
	}

	req.AssetName = strings.TrimSpace(req.AssetName)
	req.AssetURL = strings.TrimSpace(req.AssetURL)
	if req.AssetName == "" || req.AssetURL == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   "asset_name and asset_url are required",
		})
	}

	asset := &models.BookAsset{
		AssetName: req.AssetName,
		AssetURL:  req.AssetURL,
	}
	if err := ac.assetRepo.Create(asset); err != nil {
		log.Printf("[AdminAssets] asset create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "could not store asset",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"asset":   asset,
	})
}

// HandleListAssets implements GET /api/v1/admin/assets, newest first.
func (ac *AdminAssetController) HandleListAssets(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	list, err := ac.assetRepo.List(offset, limit)
	if err != nil {
		log.Printf("[AdminAssets] asset list failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "could not list assets",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"assets":  list,
	})
}

type uploadURLRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

// HandleUploadURL implements POST /api/v1/admin/assets/upload-url: issue a
// presigned PUT so the book file goes straight to object storage. The
// returned object_key is what HandleRegisterAsset expects as asset_url.
func (ac *AdminAssetController) HandleUploadURL(c *fiber.Ctx) error {
	if ac.store == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   "object storage is not configured",
		})
	}

	var req uploadURLRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
		})
	}
	req.FileName = strings.TrimSpace(req.FileName)
	if req.FileName == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   "file_name is required",
		})
	}
	if req.ContentType == "" {
		req.ContentType = "application/octet-stream"
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), adminAssetTimeout)
	defer cancel()

	url, key, err := ac.store.UploadURL(ctx, req.FileName, req.ContentType)
	if err != nil {
		log.Printf("[AdminAssets] presign upload failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "could not create upload URL",
		})
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"upload_url": url,
		"object_key": key,
	})
}
