package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/irfndi/fundamentals-ai-go/internal/models"
)

func TestSimilarityHandler_GetNearest(t *testing.T) {
	similarity := &MockSimilarity{}
	h := NewSimilarityHandler(similarity, nil)
	router := newTestRouter()
	router.GET("/similarity", h.GetNearest)

	similarity.On("Reference").Return("DEZ:DE")
	similarity.On("Nearest", mock.Anything, "DEZ:DE", 50).Return([]models.SeriesDistance{
		{Reference: "DEZ:DE", Symbol: "XETRA:KGX", Distance: 1.25},
	}, nil)
	similarity.On("Nearest", mock.Anything, "NYSE:IBM", 5).Return([]models.SeriesDistance{}, nil)

	w := serveHandler(router, http.MethodGet, "/similarity")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"reference":"DEZ:DE"`)
	assert.Contains(t, w.Body.String(), `"distance":1.25`)

	w = serveHandler(router, http.MethodGet, "/similarity?reference=NYSE:IBM&limit=5")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serveHandler(router, http.MethodGet, "/similarity?reference=bad%20symbol")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	similarity.AssertExpectations(t)
}
