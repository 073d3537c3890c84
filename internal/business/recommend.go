package business

import (
	"context"
	"fmt"
	"strings"

	"github.com/lgarza/tiendita/internal/ai"
	"github.com/lgarza/tiendita/internal/errors"
)

// PurchaseChange encodes the recommended direction for next week's purchases.
type PurchaseChange int

const (
	BuyLess  PurchaseChange = 1
	Maintain PurchaseChange = 2
	BuyMore  PurchaseChange = 3
)

// Recommendation is one product's purchase advice for the coming week.
type Recommendation struct {
	Product           string         `json:"producto_nombre"`
	CurrentOrder      float64        `json:"orden_actual"`
	Change            PurchaseChange `json:"cambio_de_compra"`
	SuggestedPurchase float64        `json:"compra_sugerida"`
	Justification     string         `json:"justificacion"`
}

// RecommendationReport is the full inventory purchase recommendation report.
type RecommendationReport struct {
	Period          string
	Recommendations []Recommendation
	Raw             []ProjectionRow
	// Message is set instead of recommendations when there is nothing to analyze.
	Message string
}

const recommendationSystemPrompt = "Eres un experto en análisis de inventarios y gestión de compras. " +
	"Generas recomendaciones precisas basadas en datos. Responde SOLO en formato JSON válido."

const recommendationPromptTemplate = `Eres un experto en gestión de inventarios. Analiza los siguientes productos y genera recomendaciones de compra para la próxima semana.

DATOS DE INVENTARIO:
%s

INSTRUCCIONES:
Para cada producto, analiza:
1. La tendencia de ventas vs compras
2. El stock actual vs proyectado
3. Si el stock proyectado será suficiente para la próxima semana

Genera recomendaciones siguiendo EXACTAMENTE este formato JSON (sin texto adicional):
{
  "recomendaciones": [
    {
      "producto_nombre": "nombre del producto",
      "orden_actual": número (compras de la última semana del producto),
      "cambio_de_compra": 1, 2 o 3 (1=comprar menos, 2=mantener compras, 3=comprar más),
      "compra_sugerida": número entero de unidades a comprar para la próxima semana,
      "justificacion": "explicación breve y clara de la recomendación"
    }
  ]
}

IMPORTANTE:
- El campo "orden_actual" DEBE ser el valor exacto de "Compras última semana" del producto.
- El campo "compra_sugerida" es tu recomendación para la próxima semana.

CRITERIOS:
- cambio_de_compra = 1 (comprar menos): Si el stock proyectado es alto y las ventas son bajas
- cambio_de_compra = 2 (mantener): Si el balance entre ventas y stock es estable
- cambio_de_compra = 3 (comprar más): Si el stock proyectado es bajo o las ventas superan las compras

La compra_sugerida debe ser un número realista basado en el promedio de ventas diario multiplicado por 7 días, ajustado según el stock actual.`

// Recommendations builds next week's purchase recommendations from the stock
// projection. Unlike the interview actions this is a report generator: upstream
// and decode failures surface to the caller.
func Recommendations(ctx context.Context, api *Client, completer ai.Completer) (*RecommendationReport, error) {
	projection, err := api.StockProjection(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetch projection for recommendations")
	}

	if len(projection.Products) == 0 {
		return &RecommendationReport{ //nolint:exhaustruct // no recommendations to report.
			Period:  projection.Period,
			Message: "No hay productos para analizar",
		}, nil
	}

	rows := make([]string, len(projection.Products))
	for i, p := range projection.Products {
		rows[i] = fmt.Sprintf(`Producto: %s
- Stock actual: %g
- Ventas última semana: %g
- Compras última semana: %g
- Stock proyectado: %g
- Promedio ventas diario: %g
- Promedio compras diario: %g`,
			p.Product, p.CurrentStock, p.WeekSales, p.WeekPurchases,
			p.ProjectedStock, p.DailySalesAvg, p.DailyPurchasesAvg)
	}
	prompt := fmt.Sprintf(recommendationPromptTemplate, strings.Join(rows, "\n\n"))

	out, err := completer.Complete(ctx, recommendationSystemPrompt, nil, prompt, ai.Options{ //nolint:exhaustruct
		Temperature: 0.3, //nolint:mnd // low temperature for data-grounded analysis.
	})
	if err != nil {
		return nil, errors.Wrap(err, "recommendation completion")
	}

	var analysis struct {
		Recommendations []Recommendation `json:"recomendaciones"`
	}
	if err = ai.DecodeObject(out, &analysis); err != nil {
		return nil, errors.Wrap(err, "decode recommendations")
	}

	return &RecommendationReport{ //nolint:exhaustruct // message only set for empty reports.
		Period:          projection.Period,
		Recommendations: analysis.Recommendations,
		Raw:             projection.Products,
	}, nil
}
