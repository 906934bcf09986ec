package repl

import (
	"fmt"
	"io"
	"strings"

	"commerce-engine/internal/app"
	"commerce-engine/internal/core"
)

func printCart(out io.Writer, c *app.CartResult) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 62))
	fmt.Fprintf(out, "  CAJA %s", c.TerminalID)
	if c.CustomerLabel != "" {
		fmt.Fprintf(out, " - %s", c.CustomerLabel)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 62))
	if len(c.Lines) == 0 {
		fmt.Fprintln(out, "  (carrito vacío)")
	} else {
		fmt.Fprintf(out, "    %-3s %-22s %8s %10s %5s %10s\n", "#", "PRODUCTO", "CANT", "PRECIO", "DTO%", "IMPORTE")
		fmt.Fprintln(out, strings.Repeat("-", 62))
		for _, l := range c.Lines {
			mark := " "
			if c.Selected != nil && *c.Selected == l.ID {
				mark = ">"
			}
			fmt.Fprintf(out, "  %s %-3d %-22s %8s %10s %5s %10s\n",
				mark, l.ID, truncate(l.Name, 22), l.Quantity.String(),
				core.FormatMoney(l.UnitPrice), l.LineDiscountPct.String(),
				core.FormatMoney(l.LineTotal()))
		}
	}
	fmt.Fprintln(out, strings.Repeat("-", 62))
	fmt.Fprintf(out, "  %-44s %15s\n", "Subtotal", core.FormatMoney(c.Totals.Subtotal))
	if c.Totals.DiscountAmount.IsPositive() {
		fmt.Fprintf(out, "  %-44s %15s\n", "Descuento "+c.GlobalDiscountPct.String()+"%", "-"+core.FormatMoney(c.Totals.DiscountAmount))
	}
	fmt.Fprintf(out, "  %-44s %15s\n", "TOTAL", core.FormatMoney(c.Totals.Total))
	if c.Tendered.Valid {
		fmt.Fprintf(out, "  %-44s %15s\n", "Entregado", core.FormatMoney(c.Tendered.Decimal))
	}
	fmt.Fprintln(out, strings.Repeat("=", 62))
	fmt.Fprintf(out, "  Teclado [%s]: %s\n", c.EntryMode, c.EntryDigits)
}

func printReceipt(out io.Writer, r *core.Receipt) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "TICKET %d  (caja %s, %s)\n", r.TicketNumber, r.TerminalID, r.IssuedAt.Format("2006-01-02 15:04"))
	for _, l := range r.Lines() {
		fmt.Fprintf(out, "  %sx %-24s %12s\n", l.Quantity.String(), truncate(l.Name, 24), core.FormatMoney(l.LineTotal))
	}
	fmt.Fprintf(out, "  %-28s %12s\n", "Subtotal", core.FormatMoney(r.Subtotal))
	if r.DiscountAmount.IsPositive() {
		fmt.Fprintf(out, "  %-28s %12s\n", "Descuento", "-"+core.FormatMoney(r.DiscountAmount))
	}
	fmt.Fprintf(out, "  %-28s %12s\n", "TOTAL", core.FormatMoney(r.Total))
	fmt.Fprintf(out, "  Pago: %s\n", r.Method)
	if r.Change.Valid {
		fmt.Fprintf(out, "  Vuelto: %s\n", core.FormatMoney(r.Change.Decimal))
	}
	if r.Reference != "" {
		fmt.Fprintf(out, "  Ref: %s\n", r.Reference)
	}
}

func printReceipts(out io.Writer, res *app.ReceiptListResult) {
	fmt.Fprintln(out)
	if len(res.Receipts) == 0 {
		fmt.Fprintln(out, "  No receipts issued in this session.")
		return
	}
	fmt.Fprintf(out, "  %-8s %-10s %12s  %s\n", "TICKET", "PAGO", "TOTAL", "HORA")
	for _, r := range res.Receipts {
		fmt.Fprintf(out, "  %-8d %-10s %12s  %s\n", r.TicketNumber, r.Method, core.FormatMoney(r.Total), r.IssuedAt.Format("15:04:05"))
	}
}

func printOrders(out io.Writer, res *app.OrderListResult) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 78))
	fmt.Fprintf(out, "  %-16s %-15s %-12s %12s  %s\n", "NUMERO", "ESTADO", "PAGO", "TOTAL", "ID")
	fmt.Fprintln(out, strings.Repeat("-", 78))
	if len(res.Orders) == 0 {
		fmt.Fprintln(out, "  No orders found.")
	}
	for _, o := range res.Orders {
		fmt.Fprintf(out, "  %-16s %-15s %-12s %12s  %s\n", o.NumeroPedido, o.Estado, o.EstadoPago, core.FormatMoney(o.Total), o.ID)
	}
	fmt.Fprintln(out, strings.Repeat("=", 78))
}

func printOrderDetail(out io.Writer, res *app.OrderResult) {
	o := res.Order
	fmt.Fprintln(out)
	fmt.Fprintf(out, "PEDIDO %s  (%s)\n", o.NumeroPedido, o.ID)
	fmt.Fprintf(out, "  Estado: %s   Pago: %s\n", o.Estado, o.EstadoPago)
	if o.Cliente.PersonaID != "" {
		fmt.Fprintf(out, "  Cliente: persona %s\n", o.Cliente.PersonaID)
	} else {
		fmt.Fprintf(out, "  Cliente: organización %s\n", o.Cliente.OrganizacionID)
	}
	for _, l := range o.Items {
		fmt.Fprintf(out, "    %-10s %-24s %8s x %10s = %12s\n", l.ProductRef, truncate(l.Descripcion, 24),
			l.Quantity.String(), core.FormatMoney(l.UnitPrice), core.FormatMoney(l.LineTotal))
	}
	fmt.Fprintf(out, "  Subtotal %s  Descuento %s  Impuestos %s  TOTAL %s\n",
		core.FormatMoney(o.Subtotal), core.FormatMoney(o.Descuento), core.FormatMoney(o.Impuestos), core.FormatMoney(o.Total))
	if len(res.Allowed) == 0 {
		fmt.Fprintln(out, "  Estado final: no admite más transiciones.")
	} else {
		names := make([]string, len(res.Allowed))
		for i, s := range res.Allowed {
			names[i] = string(s)
		}
		fmt.Fprintf(out, "  Transiciones: %s\n", strings.Join(names, ", "))
	}
	if !res.Applied {
		fmt.Fprintln(out, "  (la vista se cerró antes de la respuesta; no se actualizó)")
	}
}

func printMethods(out io.Writer, pay []core.PaymentMethodOption, ship []core.ShippingMethod) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  MEDIOS DE PAGO")
	for _, m := range pay {
		fee := ""
		if m.Fee.Valid {
			fee = " (recargo " + m.Fee.Decimal.String() + "%)"
		}
		fmt.Fprintf(out, "    %-14s %s%s\n", m.ID, m.Label, fee)
	}
	fmt.Fprintln(out, "  MÉTODOS DE ENVÍO")
	for _, m := range ship {
		price := ""
		if m.Price.Valid {
			price = " " + core.FormatMoney(m.Price.Decimal)
		}
		fmt.Fprintf(out, "    %-14s %s%s\n", m.ID, m.Label, price)
	}
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, `
Venta (caja):
  /add <ref> <precio> [cant] [nombre...]   Agregar producto
  /select <n> | /remove <n>                Seleccionar o quitar línea
  /qty | /disc | /cash                     Modo del teclado (cantidad, descuento %, efectivo)
  <dígitos>                                Teclear; '<' borra, 'C' limpia
  /commit  (o '=')                         Aplicar lo tecleado
  /gdisc <pct>                             Descuento global
  /customer <texto>                        Etiqueta de cliente
  /charge <efectivo|tarjeta|qr|cuenta> [monto|ref]
  /new                                     Descartar la venta
  /cart | /receipts | /receipt <n>

Pedidos:
  /orders [estado] [estado_pago]           Listar pedidos
  /order <id>                              Ver pedido y transiciones permitidas
  /new-order <persona|org> <id>            Crear pedido (asistente)
  /transition <id> <estado>                Cambiar estado
  /pay-status <id> <estado_pago>           Registrar estado de pago
  /close <id>                              Cerrar la vista del pedido
  /methods                                 Medios de pago y envío

  /help, /exit`)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
