package business

import (
	"context"
	"fmt"
	"strings"

	"github.com/lgarza/tiendita/internal/ai"
	"github.com/lgarza/tiendita/internal/errors"
)

const extractionSystemPrompt = "Eres un experto en extraer información estructurada de texto. " +
	"Responde SOLO en formato JSON válido."

const extractionPromptTemplate = `Extrae la información de ventas del siguiente texto del usuario.

Productos disponibles:
%s

Respuesta del usuario: "%s"

Identifica qué productos mencionó el usuario y en qué cantidades. Responde SOLO en formato JSON válido:
{
  "productos": [
    {
      "id_producto": número,
      "nombre": "nombre del producto",
      "cantidad": número,
      "precio_unitario": número (del catálogo),
      "subtotal": número (cantidad * precio_unitario)
    }
  ]
}

Si no se mencionan cantidades específicas, asume 1 unidad.`

// extractLines pulls structured line items out of a free-text answer, resolving
// products against the given catalog snapshot.
func extractLines(ctx context.Context, completer ai.Completer, answer string, products []Product) ([]SaleLine, error) {
	rows := make([]string, len(products))
	for i, p := range products {
		rows[i] = fmt.Sprintf("ID: %d, Nombre: %s, Precio Venta: %g", p.ID, p.Name, p.SellPrice)
	}
	prompt := fmt.Sprintf(extractionPromptTemplate, strings.Join(rows, "\n"), answer)

	out, err := completer.Complete(ctx, extractionSystemPrompt, nil, prompt, ai.Options{ //nolint:exhaustruct
		Temperature: 0.3, //nolint:mnd // low temperature for deterministic extraction.
	})
	if err != nil {
		return nil, errors.Wrap(err, "extraction completion")
	}

	var extracted struct {
		Products []SaleLine `json:"productos"`
	}
	if err = ai.DecodeObject(out, &extracted); err != nil {
		return nil, errors.Wrap(err, "decode extracted line items")
	}
	return extracted.Products, nil
}
