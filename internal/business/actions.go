package business

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lgarza/tiendita/internal/ai"
	"github.com/lgarza/tiendita/internal/errors"
)

// The ledger API requires these identifiers but the interview never resolves
// them, so they are posted as named unassigned sentinels instead of guesses.
const (
	UnassignedSupplierID   int64 = 1
	UnassignedOrderID      int64 = 1
	UnassignedPackageCount int   = 1

	// defaultEmployeeID identifies the interview process in the sale ledger.
	defaultEmployeeID int64 = 1
)

const fallbackInventoryMessage = "He notado tu conteo de inventario. Continuemos."

// Action is a side effect bound to an accepted answer. Apply may return a
// user-facing message that replaces the generic acknowledgment.
type Action interface {
	Apply(ctx context.Context, answer string) (string, error)
}

// Dispatcher maps question slots to their business action. Failures never reach
// the interview: a broken side effect is logged and the turn proceeds.
type Dispatcher struct {
	actions map[int]Action
	logger  *slog.Logger
}

func NewDispatcher(api *Client, completer ai.Completer, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		actions: map[int]Action{
			0: &recordSale{api: api, completer: completer},
			1: &recordPurchase{api: api, completer: completer},
			2: &reconcileInventory{api: api, completer: completer, logger: logger},
		},
		logger: logger,
	}
}

// Dispatch runs the action for the slot, if any. It returns the action's
// user-facing message or "" when there is none, the slot has no action, or the
// action failed. Best effort, at most once: a lost ledger write is logged only.
func (d *Dispatcher) Dispatch(ctx context.Context, questionIndex int, answer string) string {
	action, ok := d.actions[questionIndex]
	if !ok {
		return ""
	}
	message, err := action.Apply(ctx, answer)
	if err != nil {
		d.logger.LogAttrs(ctx, slog.LevelWarn, "business action failed",
			slog.Int("questionIndex", questionIndex), errors.SlogError(err))
		return ""
	}
	return message
}

type recordSale struct {
	api       *Client
	completer ai.Completer
}

func (a *recordSale) Apply(ctx context.Context, answer string) (string, error) {
	lines, err := extractAgainstCatalog(ctx, a.api, a.completer, answer)
	if err != nil || len(lines) == 0 {
		return "", err
	}
	sale := Sale{
		EmployeeID: defaultEmployeeID,
		Date:       today(),
		Total:      sumSubtotals(lines),
		Lines:      lines,
	}
	if err = a.api.PostSale(ctx, sale); err != nil {
		return "", err
	}
	return "", nil
}

type recordPurchase struct {
	api       *Client
	completer ai.Completer
}

func (a *recordPurchase) Apply(ctx context.Context, answer string) (string, error) {
	lines, err := extractAgainstCatalog(ctx, a.api, a.completer, answer)
	if err != nil || len(lines) == 0 {
		return "", err
	}

	purchaseLines := make([]PurchaseLine, len(lines))
	var total float64
	for i, line := range lines {
		description := line.Name
		if description == "" {
			description = "Producto recibido"
		}
		purchaseLines[i] = PurchaseLine{
			ProductID:    line.ProductID,
			PackageCount: UnassignedPackageCount,
			Quantity:     line.Quantity,
			UnitCost:     line.UnitPrice,
			Subtotal:     line.Subtotal,
			Description:  description,
		}
		total += line.Subtotal
	}

	purchase := Purchase{
		SupplierID: UnassignedSupplierID,
		OrderID:    UnassignedOrderID,
		Date:       today(),
		Total:      total,
		Lines:      purchaseLines,
	}
	if err = a.api.PostPurchase(ctx, purchase); err != nil {
		return "", err
	}
	return "", nil
}

const inventorySystemPrompt = "Eres un asistente que compara inventarios y genera mensajes claros sobre diferencias."

const inventoryPromptTemplate = `El usuario mencionó su conteo de inventario. Compara con el stock actual del sistema.

Stock actual en sistema:
%s

Respuesta del usuario: "%s"

Genera un mensaje breve en español informando sobre las diferencias encontradas o confirmando que coincide. Sé conciso y profesional.`

type reconcileInventory struct {
	api       *Client
	completer ai.Completer
	logger    *slog.Logger
}

func (a *reconcileInventory) Apply(ctx context.Context, answer string) (string, error) {
	products, err := a.api.Products(ctx)
	if err != nil || len(products) == 0 {
		return "", err
	}

	rows := make([]string, len(products))
	for i, p := range products {
		rows[i] = fmt.Sprintf("%s: Stock actual %g %s", p.Name, p.Stock, p.Unit)
	}
	prompt := fmt.Sprintf(inventoryPromptTemplate, strings.Join(rows, "\n"), answer)

	message, err := a.completer.Complete(ctx, inventorySystemPrompt, nil, prompt, ai.Options{ //nolint:exhaustruct
		Temperature: 0.5, //nolint:mnd // matches the reconciliation prompt tuning.
	})
	if err != nil {
		// The reconciliation message is user-facing, so degrade to a fixed one.
		a.logger.LogAttrs(ctx, slog.LevelWarn, "inventory reconciliation completion failed", errors.SlogError(err))
		return fallbackInventoryMessage, nil
	}
	return strings.TrimSpace(message), nil
}

// extractAgainstCatalog fetches a fresh catalog snapshot and extracts line items
// from the answer. An empty catalog is a no-op, not an error.
func extractAgainstCatalog(
	ctx context.Context, api *Client, completer ai.Completer, answer string,
) ([]SaleLine, error) {
	products, err := api.Products(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}
	return extractLines(ctx, completer, answer, products)
}

func sumSubtotals(lines []SaleLine) float64 {
	var total float64
	for _, line := range lines {
		total += line.Subtotal
	}
	return total
}

func today() string {
	return time.Now().UTC().Format(time.DateOnly)
}
