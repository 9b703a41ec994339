package controllers

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/RafalSprengel/restaurant-pos-backend/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type ProductController struct {
	service ProductServiceAPI
	cache   *CacheManager
}

func NewProductController(service ProductServiceAPI, redisClient *redis.Client) *ProductController {
	return &ProductController{
		service: service,
		cache:   NewCacheManager(redisClient),
	}
}

// GetProducts returns a paginated, filtered menu page, served from the Redis
// cache when possible.
func (pc *ProductController) GetProducts(c *gin.Context) {
	params, err := parseListParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if cached, ok := pc.cache.GetProductList(c.Request.Context(), *params); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	products, total, listErr := pc.service.ListProducts(c.Request.Context(), *params)
	if listErr != nil {
		zap.L().Error("Error finding products", zap.Error(listErr))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	totalPages := int(math.Ceil(float64(total) / float64(params.PerPage)))
	response := map[string]interface{}{
		"products": products,
		"meta": map[string]interface{}{
			"page":       params.Page,
			"perPage":    params.PerPage,
			"total":      total,
			"totalPages": totalPages,
		},
	}

	pc.cache.SetProductListAsync(*params, response)
	c.JSON(http.StatusOK, response)
}

// GetProductByID returns a single live product.
func (pc *ProductController) GetProductByID(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid UUID format"})
		return
	}

	product, svcErr := pc.service.GetProduct(c.Request.Context(), productID)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct handles staff product creation.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req services.ProductCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	product, svcErr := pc.service.CreateProduct(c.Request.Context(), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	pc.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct applies a partial update from a whitelisted field set.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid UUID format"})
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	updates, err := buildProductUpdates(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No updatable fields provided"})
		return
	}

	if svcErr := pc.service.UpdateProduct(c.Request.Context(), productID, updates); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	pc.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Product updated"})
}

// DeleteProduct soft deletes a product.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid UUID format"})
		return
	}

	if svcErr := pc.service.DeleteProduct(c.Request.Context(), productID); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	pc.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// GetUploadURL returns a presigned PUT URL for a product image upload.
func (pc *ProductController) GetUploadURL(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid UUID format"})
		return
	}

	filename := c.DefaultQuery("filename", "upload")
	contentType := c.DefaultQuery("content_type", "image/jpeg")
	if !isAllowedImageContentType(contentType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid content type"})
		return
	}

	expires, err := strconv.ParseInt(c.DefaultQuery("expires", "900"), 10, 64)
	if err != nil || expires <= 0 {
		expires = 900
	}
	if expires > 3600 {
		expires = 3600
	}

	uploadURL, key, svcErr := pc.service.GeneratePresignedUpload(c.Request.Context(), productID, filename, contentType, expires)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"upload_url": uploadURL,
		"method":     "PUT",
		"key":        key,
		"expires_in": expires,
	})
}

func parseListParams(c *gin.Context) (*services.ListProductsParams, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(c.DefaultQuery("perPage", "10"))
	if err != nil || perPage <= 0 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	params := &services.ListProductsParams{
		Page:    page,
		PerPage: perPage,
		Sort:    c.Query("sort"),
	}

	if raw := strings.TrimSpace(c.Query("categoryId")); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			return nil, errInvalidCategoryID
		}
		params.CategoryID = &categoryID
	}
	if raw := c.Query("vegetarian"); raw != "" {
		vegetarian := raw == "true"
		params.Vegetarian = &vegetarian
	}
	if raw := c.Query("glutenFree"); raw != "" {
		glutenFree := raw == "true"
		params.GlutenFree = &glutenFree
	}

	return params, nil
}

var errInvalidCategoryID = &paramError{"Invalid category id"}

type paramError struct{ msg string }

func (e *paramError) Error() string { return e.msg }

// buildProductUpdates converts a patch body into a typed $set document,
// rejecting unknown fields and wrong types.
func buildProductUpdates(body map[string]interface{}) (bson.M, error) {
	updates := bson.M{}
	for field, value := range body {
		switch field {
		case "name":
			name, ok := value.(string)
			if !ok || name == "" {
				return nil, &paramError{"name must be a non-empty string"}
			}
			updates["name"] = name
		case "price":
			price, ok := value.(float64)
			if !ok || price <= 0 {
				return nil, &paramError{"price must be a positive number"}
			}
			updates["price"] = price
		case "categoryId":
			raw, ok := value.(string)
			if !ok {
				return nil, &paramError{"categoryId must be a string"}
			}
			categoryID, err := uuid.Parse(raw)
			if err != nil {
				return nil, &paramError{"categoryId must be a valid UUID"}
			}
			updates["category_id"] = categoryID
		case "vegetarian":
			vegetarian, ok := value.(bool)
			if !ok {
				return nil, &paramError{"vegetarian must be a boolean"}
			}
			updates["vegetarian"] = vegetarian
		case "glutenFree":
			glutenFree, ok := value.(bool)
			if !ok {
				return nil, &paramError{"glutenFree must be a boolean"}
			}
			updates["gluten_free"] = glutenFree
		case "ingredients":
			raw, ok := value.([]interface{})
			if !ok {
				return nil, &paramError{"ingredients must be an array of strings"}
			}
			ingredients := make([]string, 0, len(raw))
			for _, item := range raw {
				ingredient, ok := item.(string)
				if !ok {
					return nil, &paramError{"ingredients must be an array of strings"}
				}
				ingredients = append(ingredients, ingredient)
			}
			updates["ingredients"] = ingredients
		case "imageUrl":
			imageURL, ok := value.(string)
			if !ok {
				return nil, &paramError{"imageUrl must be a string"}
			}
			updates["image_url"] = imageURL
		default:
			return nil, &paramError{"unknown field: " + field}
		}
	}
	return updates, nil
}

func isAllowedImageContentType(contentType string) bool {
	allowedTypes := map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/webp": true,
	}
	return allowedTypes[contentType]
}
