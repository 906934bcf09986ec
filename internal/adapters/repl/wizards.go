package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"commerce-engine/internal/app"
	"commerce-engine/internal/core"

	"github.com/shopspring/decimal"
)

// handleNewOrder runs an interactive order creation session.
func handleNewOrder(ctx context.Context, reader *bufio.Reader, out io.Writer, svc app.ApplicationService, cliente core.ClienteRef) {
	prompt := func(label string) string {
		fmt.Fprint(out, label)
		s, _ := reader.ReadString('\n')
		return strings.TrimSpace(s)
	}

	fmt.Fprintln(out, "Enter order lines. Type 'done' when finished, 'cancel' to abort.")
	fmt.Fprintln(out, "Format per line: <product-ref> <quantity> <unit-price> [discount-%] [description...]")
	fmt.Fprintln(out, "  Example: P001 2 100")
	fmt.Fprintln(out, "  Example: P002 0.75 12.50 10 Queso x kg")

	var lines []core.OrderLineInput
	for n := 1; ; {
		raw := prompt(fmt.Sprintf("  Line %d: ", n))
		switch strings.ToLower(raw) {
		case "cancel":
			fmt.Fprintln(out, "Order creation cancelled.")
			return
		case "done":
		case "":
			continue
		default:
			line, err := parseOrderLine(raw)
			if err != nil {
				fmt.Fprintf(out, "  %v\n", err)
				continue
			}
			lines = append(lines, line)
			n++
			continue
		}
		break
	}
	if len(lines) == 0 {
		fmt.Fprintln(out, "No lines entered. Order not created.")
		return
	}

	req := app.CreateOrderRequest{Cliente: cliente, Items: lines}
	for _, f := range []struct {
		label string
		dst   *decimal.Decimal
	}{{"Descuento [0]: ", &req.Descuento}, {"Impuestos [0]: ", &req.Impuestos}} {
		for {
			raw := prompt(f.label)
			if raw == "" {
				break
			}
			v, err := decimal.NewFromString(raw)
			if err != nil || v.IsNegative() {
				fmt.Fprintln(out, "  Invalid amount.")
				continue
			}
			*f.dst = v
			break
		}
	}
	req.MetodoPagoRef = prompt("Medio de pago (optional): ")
	req.MetodoEnvioRef = prompt("Método de envío (optional): ")
	if req.MetodoEnvioRef != "" {
		req.DireccionEnvio = prompt("Dirección de envío: ")
	}
	req.Notas = prompt("Notas (optional): ")

	res, err := svc.CreateOrder(ctx, req)
	if err != nil {
		fmt.Fprintf(out, "Error creating order: %v\n", err)
		return
	}
	fmt.Fprintf(out, "\nOrder %s created.\n", res.Order.NumeroPedido)
	printOrderDetail(out, res)
}

func parseOrderLine(raw string) (core.OrderLineInput, error) {
	parts := strings.Fields(raw)
	if len(parts) < 3 {
		return core.OrderLineInput{}, fmt.Errorf("invalid format, use: <product-ref> <quantity> <unit-price> [discount-%%] [description...]")
	}
	qty, err := decimal.NewFromString(parts[1])
	if err != nil || !qty.IsPositive() {
		return core.OrderLineInput{}, fmt.Errorf("invalid quantity %q", parts[1])
	}
	price, err := decimal.NewFromString(parts[2])
	if err != nil || price.IsNegative() {
		return core.OrderLineInput{}, fmt.Errorf("invalid price %q", parts[2])
	}
	line := core.OrderLineInput{ProductRef: strings.ToUpper(parts[0]), Quantity: qty, UnitPrice: price}
	rest := parts[3:]
	if len(rest) > 0 {
		if pct, err := decimal.NewFromString(rest[0]); err == nil {
			line.LineDiscountPct = pct
			rest = rest[1:]
		}
	}
	line.Descripcion = strings.Join(rest, " ")
	return line, nil
}
