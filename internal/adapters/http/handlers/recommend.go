package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/verse-recommender/internal/adapters/http/dto"
	"github.com/jsamuelsen/verse-recommender/internal/app"
	"github.com/jsamuelsen/verse-recommender/internal/domain"
)

// Recommender is the application surface the recommendation endpoints need.
type Recommender interface {
	Recommend(ctx context.Context, sel domain.FacetSelection) (*app.Recommendation, error)
	RecommendEnriched(ctx context.Context, sel domain.FacetSelection, limit int) (*app.EnrichedRecommendation, error)
}

// RecommendHandler handles the recommendation and facet endpoints.
type RecommendHandler struct {
	service Recommender
}

// NewRecommendHandler creates a new recommendation handler.
func NewRecommendHandler(service Recommender) *RecommendHandler {
	return &RecommendHandler{service: service}
}

// Recommend handles POST /recommend and POST /api/v1/recommendations.
// Returns the matching verse references as [surah, verse] pairs in fact base order.
//
// @Summary Recommend verses
// @Tags recommendations
// @Accept json
// @Produce json
// @Param request body dto.RecommendRequest true "Facet choices"
// @Success 200 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Failure 500 {object} dto.Response
// @Router /api/v1/recommendations [post]
func (h *RecommendHandler) Recommend(c *gin.Context) {
	var req dto.RecommendRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	rec, err := h.service.Recommend(c.Request.Context(), req.Selection())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPairsResponse(rec.Matches))
}

// RecommendEnriched handles POST /api/v1/recommendations/enriched.
// Lookup failures are reported per verse and never fail the request.
//
// @Summary Recommend verses with text and audio
// @Tags recommendations
// @Accept json
// @Produce json
// @Param request body dto.EnrichedRecommendRequest true "Facet choices and limit"
// @Success 200 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Failure 500 {object} dto.Response
// @Router /api/v1/recommendations/enriched [post]
func (h *RecommendHandler) RecommendEnriched(c *gin.Context) {
	var req dto.EnrichedRecommendRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	rec, err := h.service.RecommendEnriched(c.Request.Context(), req.Selection(), req.LimitOrZero())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewEnrichedResponse(rec.Verses, rec.TotalFound, rec.Failed))
}

// Facets handles GET /api/v1/facets.
func (h *RecommendHandler) Facets(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewFacetsResponse())
}

// RegisterLegacyRoutes registers POST /recommend, normally on the engine root.
func (h *RecommendHandler) RegisterLegacyRoutes(r gin.IRoutes) {
	r.POST("/recommend", h.Recommend)
}

// RegisterRecommendRoutes registers the versioned routes on the given router group.
func (h *RecommendHandler) RegisterRecommendRoutes(rg *gin.RouterGroup) {
	rg.POST("/recommendations", h.Recommend)
	rg.POST("/recommendations/enriched", h.RecommendEnriched)
	rg.GET("/facets", h.Facets)
}
