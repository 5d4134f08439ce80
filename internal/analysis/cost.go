package analysis

import (
	"math"

	"tubelens-backend/internal/models"
)

const (
	tokensPerChar     = 1.5
	promptOverhead    = 1000
	usdPerThousandTok = 0.045
	krwPerUSD         = 1300
)

// EstimateCost approximates token usage and price of one report request.
// Pure, and safe on an empty list.
func EstimateCost(videos []models.VideoRecord) models.CostEstimate {
	total := 0
	for _, v := range videos {
		total += models.TextLength(v.Title) + models.TextLength(v.Description) + models.TextLength(v.Transcript)
	}

	tokens := int(math.Ceil(float64(total)*tokensPerChar)) + promptOverhead
	usd := float64(tokens) / 1000 * usdPerThousandTok

	return models.CostEstimate{
		EstimatedTokens:  tokens,
		EstimatedCostUSD: math.Round(usd*1000) / 1000,
		EstimatedCostKRW: int64(math.Round(usd * krwPerUSD)),
	}
}
