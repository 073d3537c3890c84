package interview

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lgarza/tiendita/internal/ai"
	"github.com/lgarza/tiendita/internal/errors"
)

// Verdict is the validator's judgment of whether an answer satisfies the
// current question. Ephemeral, produced per turn.
type Verdict struct {
	Accepted   bool    `json:"isAnswered"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// acceptThreshold is the confidence an accepted verdict must exceed before the
// interview advances.
const acceptThreshold = 0.6

const validationSystemPrompt = "Eres un experto en validación de preguntas. Responde SOLO en formato JSON válido."

const validationPromptTemplate = `Eres un experto en validar respuestas de entrevistas.

Pregunta actual: "%s"

Respuesta del usuario: "%s"

Evalúa si la respuesta del usuario contesta correctamente la pregunta. Ten en cuenta:
- ¿Proporciona información relevante sobre el tema?
- ¿Es clara y suficientemente específica?
- ¿Responde a lo solicitado?

Responde SOLO en formato JSON válido (sin texto adicional):
{
  "isAnswered": true o false,
  "confidence": 0.0 a 1.0,
  "reason": "breve explicación"
}`

type validator struct {
	completer ai.Completer
	logger    *slog.Logger
}

// validate judges the answer against the question. It never fails: ambiguity is
// resolved toward "needs follow-up", so upstream and decode failures both come
// back as conservative rejections.
func (v *validator) validate(ctx context.Context, question, answer string) Verdict {
	prompt := fmt.Sprintf(validationPromptTemplate, question, answer)

	out, err := v.completer.Complete(ctx, validationSystemPrompt, nil, prompt, ai.Options{ //nolint:exhaustruct
		Temperature: 0.3, //nolint:mnd // low temperature for judging.
	})
	if err != nil {
		v.logger.LogAttrs(ctx, slog.LevelWarn, "validation completion failed", errors.SlogError(err))
		return Verdict{Accepted: false, Confidence: 0, Reason: "Error en validación"}
	}

	var verdict Verdict
	if err = ai.DecodeObject(out, &verdict); err != nil {
		v.logger.LogAttrs(ctx, slog.LevelWarn, "validation verdict undecodable", errors.SlogError(err))
		return Verdict{Accepted: false, Confidence: 0.5, Reason: "Respuesta poco clara"} //nolint:mnd
	}
	return verdict
}
