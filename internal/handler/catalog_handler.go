package handler

import (
	"strconv"

	"srmdb/internal/model"
	"srmdb/internal/service"
	"srmdb/pkg/jwt"
	"srmdb/pkg/response"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalog   *service.CatalogService
	recommend *service.RecommendService
}

func NewCatalogHandler(catalog *service.CatalogService, recommend *service.RecommendService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, recommend: recommend}
}

// Popular 热门电影榜单
func (h *CatalogHandler) Popular(c *gin.Context) {
	h.popular(c, model.MediaTypeMovie)
}

// PopularByType 指定媒体类型的热门榜单（movie或tv）
func (h *CatalogHandler) PopularByType(c *gin.Context) {
	h.popular(c, c.Param("type"))
}

func (h *CatalogHandler) popular(c *gin.Context, mediaType string) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	result, err := h.catalog.Popular(c.Request.Context(), mediaType, page)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, result)
}

// Recommendations 基于收藏的推荐（mode: personal/partner/shared）
func (h *CatalogHandler) Recommendations(c *gin.Context) {
	type req struct {
		Type  string `json:"type"`
		Limit int    `json:"limit"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if r.Type == "" {
		r.Type = service.RecommendPersonal
	}

	items, err := h.recommend.Recommend(c.Request.Context(), jwt.GetUserID(c), r.Type, r.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"results": items, "count": len(items)})
}
