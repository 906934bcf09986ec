package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"commerce-engine/internal/app"
	"commerce-engine/internal/core"
)

// Usage lists the one-shot commands.
const Usage = "Available: orders [estado] [estado_pago], order <id>, transition <id> <estado>, pay-status <id> <estado_pago>, methods"

// Run executes a one-shot CLI command and writes its result to out.
// args is os.Args[1:]; the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, out io.Writer, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no command given\n%s", Usage)
	}
	actor := "cli"

	switch args[0] {
	case "orders", "ls":
		req := app.ListOrdersRequest{}
		if len(args) > 1 {
			req.Estado = args[1]
		}
		if len(args) > 2 {
			req.EstadoPago = args[2]
		}
		res, err := svc.ListOrders(ctx, req)
		if err != nil {
			return err
		}
		printOrders(out, res.Orders)

	case "order", "show":
		if len(args) < 2 {
			return fmt.Errorf("usage: app order <id>")
		}
		res, err := svc.GetOrder(ctx, args[1])
		if err != nil {
			return err
		}
		return encode(out, res)

	case "transition", "tr":
		if len(args) < 3 {
			return fmt.Errorf("usage: app transition <id> <estado>")
		}
		target, err := core.ParseOrderState(args[2])
		if err != nil {
			return err
		}
		res, err := svc.RequestTransition(ctx, app.TransitionRequest{OrderID: args[1], Target: target, Actor: actor})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Order %s is now %s.\n", res.Order.NumeroPedido, res.Order.Estado)

	case "pay-status", "pay":
		if len(args) < 3 {
			return fmt.Errorf("usage: app pay-status <id> <estado_pago>")
		}
		status, err := core.ParsePaymentState(args[2])
		if err != nil {
			return err
		}
		res, err := svc.SetPaymentStatus(ctx, app.PaymentStatusRequest{OrderID: args[1], Status: status, Actor: actor})
		if err != nil {
			return err
		}
		if !res.Changed {
			fmt.Fprintf(out, "Order %s payment status already %s.\n", res.Order.NumeroPedido, status)
			return nil
		}
		fmt.Fprintf(out, "Order %s payment status set to %s.\n", res.Order.NumeroPedido, res.Order.EstadoPago)

	case "methods":
		pay, err := svc.ListPaymentMethods(ctx)
		if err != nil {
			return err
		}
		ship, err := svc.ListShippingMethods(ctx)
		if err != nil {
			return err
		}
		return encode(out, map[string]any{"metodos_pago": pay, "metodos_envio": ship})

	default:
		return fmt.Errorf("unknown command: %s\n%s", args[0], Usage)
	}
	return nil
}

func encode(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printOrders(out io.Writer, orders []core.Order) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 62))
	fmt.Fprintf(out, "  %-16s %-15s %-12s %14s\n", "NUMERO", "ESTADO", "PAGO", "TOTAL")
	fmt.Fprintln(out, strings.Repeat("-", 62))
	for _, o := range orders {
		fmt.Fprintf(out, "  %-16s %-15s %-12s %14s\n", o.NumeroPedido, o.Estado, o.EstadoPago, core.FormatMoney(o.Total))
	}
	fmt.Fprintln(out, strings.Repeat("=", 62))
}
