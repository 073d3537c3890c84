package interview

import (
	"context"
	"fmt"
	"strings"

	"github.com/lgarza/tiendita/internal/ai"
	"github.com/lgarza/tiendita/internal/errors"
)

// ErrEmptyTranscript means there is no conversation to summarize yet.
var ErrEmptyTranscript = errors.NewSentinel("no conversation to summarize")

const summarySystemPrompt = "Eres una IA de análisis comercial. Resume datos comerciales en información clave."

const summaryPromptTemplate = `Resume la siguiente entrevista comercial en puntos sobre:
- Productos vendidos
- Inventario actual
- Producto recibido
- Pagos a empleados
- Pagos de servicios comerciales locales

Conversación:
%s

Proporciona un resumen conciso con información procesable.`

// Summarize folds the full transcript into one narrative completion. The
// completion text is returned verbatim; summarization failures surface to the
// caller, unlike the absorbed failures inside the interview loop.
func Summarize(ctx context.Context, completer ai.Completer, transcript []ai.Message) (string, error) {
	if len(transcript) == 0 {
		return "", ErrEmptyTranscript
	}

	turns := make([]string, len(transcript))
	for i, turn := range transcript {
		turns[i] = fmt.Sprintf("%s: %s", turn.Role, turn.Content)
	}
	prompt := fmt.Sprintf(summaryPromptTemplate, strings.Join(turns, "\n"))

	summary, err := completer.Complete(ctx, summarySystemPrompt, nil, prompt, ai.Options{ //nolint:exhaustruct
		Temperature: 0.4, //nolint:mnd // balanced tone for narrative output.
	})
	if err != nil {
		return "", errors.Wrap(err, "summary completion")
	}
	return summary, nil
}
