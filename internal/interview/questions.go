// Package interview implements the scripted business interview: a fixed
// question sequence, per-turn answer validation through the completion service,
// clarifying follow-ups, and the side-effecting business actions coupled to
// accepted answers.
package interview

// Questions is the fixed interview script, asked in order.
var Questions = [...]string{
	"¿Qué productos vendiste hoy?",
	"¿Cuánto producto recibiste hoy?",
	"¿Cuál es tu conteo de inventario actual?",
	"¿Pagaste a tus empleados hoy?",
	"¿Pagaste algún servicio comercial local hoy?",
}

// TotalQuestions is the number of scripted questions.
const TotalQuestions = len(Questions)

const introMessage = "¡Hola! Estoy aquí para ayudarte a rastrear la actividad comercial de hoy. Comencemos."

// acknowledgment is the deterministic reply to an accepted answer. Keeping it
// fixed stops the model from sneaking in new main questions.
const acknowledgment = "¡Excelente, entendido! Continuemos."
