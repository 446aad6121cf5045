package savedtemplate

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/savedtemplate"
)

type summaryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type templateResponse struct {
	summaryResponse
	Document *invoice.Document `json:"document"`
}

func toSummary(t *savedtemplate.Template) summaryResponse {
	return summaryResponse{
		ID:        t.ID,
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
	}
}

func toSummaryList(templates []*savedtemplate.Template) []summaryResponse {
	resp := make([]summaryResponse, len(templates))
	for i, t := range templates {
		resp[i] = toSummary(t)
	}

	return resp
}
