package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"commerce-engine/internal/app"
	"commerce-engine/internal/core"

	"github.com/shopspring/decimal"
)

var errExit = errors.New("exit")

// Run starts the interactive POS loop for one terminal.
// Slash commands drive the cart and the order desk; any other input is keypad entry.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader, out io.Writer, terminalID string) error {
	cart, err := svc.OpenTerminal(ctx, terminalID)
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	defer func() { _ = svc.CloseTerminal(ctx, terminalID) }()

	fmt.Fprintln(out, "Caja", terminalID)
	fmt.Fprintln(out, "Use /help for commands.")
	fmt.Fprintln(out, strings.Repeat("-", 62))

	for {
		fmt.Fprint(out, "\n> ")
		input, readErr := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			if readErr != nil {
				return nil
			}
			continue
		}

		var err error
		if strings.HasPrefix(input, "/") {
			cart, err = dispatch(ctx, svc, reader, out, terminalID, cart, input)
		} else if input == "=" {
			cart, err = commit(ctx, svc, out, terminalID)
		} else {
			cart, err = svc.PressKeys(ctx, terminalID, input)
			if err == nil {
				fmt.Fprintf(out, "  [%s] %s\n", cart.EntryMode, cart.EntryDigits)
			}
		}
		if errors.Is(err, errExit) {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			if fresh, cerr := svc.GetCart(ctx, terminalID); cerr == nil {
				cart = fresh
			}
		}
		if readErr != nil {
			return nil
		}
	}
}

func commit(ctx context.Context, svc app.ApplicationService, out io.Writer, terminalID string) (*app.CartResult, error) {
	cart, err := svc.CommitEntry(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	if !cart.Applied {
		fmt.Fprintln(out, "  (nothing to apply: select a line or type a valid value)")
		return cart, nil
	}
	printCart(out, cart)
	return cart, nil
}

// dispatch runs one slash command and returns the cart as it stands afterwards.
func dispatch(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader, out io.Writer, tid string, cart *app.CartResult, input string) (*app.CartResult, error) {
	tokens := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(tokens) == 0 {
		return cart, nil
	}
	cmd := strings.ToLower(tokens[0])
	args := tokens[1:]

	showCart := func(res *app.CartResult, err error) (*app.CartResult, error) {
		if err != nil {
			return cart, err
		}
		printCart(out, res)
		return res, nil
	}
	usage := func(s string) (*app.CartResult, error) {
		fmt.Fprintln(out, "Usage:", s)
		return cart, nil
	}

	switch cmd {
	case "cart":
		return showCart(svc.GetCart(ctx, tid))

	case "add":
		if len(args) < 2 {
			return usage("/add <ref> <precio> [cant] [nombre...]")
		}
		price, err := decimal.NewFromString(args[1])
		if err != nil {
			return cart, fmt.Errorf("invalid price %q", args[1])
		}
		req := app.AddItemRequest{TerminalID: tid, Product: core.Product{Ref: strings.ToUpper(args[0]), Name: args[0], UnitPrice: price}}
		if len(args) >= 3 {
			if qty, err := decimal.NewFromString(args[2]); err == nil {
				req.Quantity = qty
				args = append(args[:2], args[3:]...)
			}
		}
		if len(args) >= 3 {
			req.Product.Name = strings.Join(args[2:], " ")
		}
		return showCart(svc.AddItem(ctx, req))

	case "select", "remove":
		if len(args) < 1 {
			return usage("/" + cmd + " <línea>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return cart, fmt.Errorf("invalid line %q", args[0])
		}
		if cmd == "select" {
			return showCart(svc.SelectLine(ctx, tid, core.LineID(n)))
		}
		return showCart(svc.RemoveLine(ctx, tid, core.LineID(n)))

	case "qty", "disc", "cash":
		mode, err := core.ParseEntryMode(cmd)
		if err != nil {
			return cart, err
		}
		res, err := svc.SetEntryMode(ctx, tid, mode)
		if err != nil {
			return cart, err
		}
		fmt.Fprintf(out, "  Teclado en modo %s\n", res.EntryMode)
		return res, nil

	case "commit":
		return commit(ctx, svc, out, tid)

	case "gdisc":
		if len(args) < 1 {
			return usage("/gdisc <pct>")
		}
		pct, err := decimal.NewFromString(args[0])
		if err != nil {
			return cart, fmt.Errorf("invalid percentage %q", args[0])
		}
		return showCart(svc.SetGlobalDiscount(ctx, tid, pct))

	case "customer":
		return showCart(svc.SetCustomerLabel(ctx, tid, strings.Join(args, " ")))

	case "new":
		return showCart(svc.NewSale(ctx, tid))

	case "charge":
		if len(args) < 1 {
			return usage("/charge <efectivo|tarjeta|qr|cuenta> [monto|ref]")
		}
		method, err := core.ParsePaymentMethod(args[0])
		if err != nil {
			return cart, err
		}
		req := app.ChargeRequest{TerminalID: tid, Method: method}
		if len(args) >= 2 {
			if method.IsCash() {
				amt, err := decimal.NewFromString(args[1])
				if err != nil {
					return cart, fmt.Errorf("invalid amount %q", args[1])
				}
				req.CashReceived = decimal.NewNullDecimal(amt)
			} else {
				req.Reference = strings.Join(args[1:], " ")
			}
		}
		res, err := svc.Charge(ctx, req)
		if err != nil {
			return cart, err
		}
		printReceipt(out, &res.Receipt)
		return res.Cart, nil

	case "receipts":
		res, err := svc.ListReceipts(ctx, tid)
		if err != nil {
			return cart, err
		}
		printReceipts(out, res)

	case "receipt":
		if len(args) < 1 {
			return usage("/receipt <ticket> [pdf]")
		}
		n, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return cart, fmt.Errorf("invalid ticket %q", args[0])
		}
		if len(args) >= 2 && strings.EqualFold(args[1], "pdf") {
			doc, err := svc.ReceiptPDF(ctx, tid, n)
			if err != nil {
				return cart, err
			}
			if err := os.WriteFile(doc.FileName, doc.Data, 0o644); err != nil {
				return cart, fmt.Errorf("failed to write %s: %w", doc.FileName, err)
			}
			fmt.Fprintf(out, "  Written %s\n", doc.FileName)
			return cart, nil
		}
		r, err := svc.GetReceipt(ctx, tid, n)
		if err != nil {
			return cart, err
		}
		printReceipt(out, r)

	case "orders":
		req := app.ListOrdersRequest{}
		if len(args) > 0 {
			req.Estado = args[0]
		}
		if len(args) > 1 {
			req.EstadoPago = args[1]
		}
		res, err := svc.ListOrders(ctx, req)
		if err != nil {
			return cart, err
		}
		printOrders(out, res)

	case "order":
		if len(args) < 1 {
			return usage("/order <id>")
		}
		res, err := svc.OpenOrder(ctx, args[0])
		if err != nil {
			return cart, err
		}
		printOrderDetail(out, res)

	case "new-order":
		if len(args) < 2 {
			return usage("/new-order <persona|org> <id>")
		}
		var cliente core.ClienteRef
		switch strings.ToLower(args[0]) {
		case "persona", "per":
			cliente.PersonaID = args[1]
		case "org", "organizacion":
			cliente.OrganizacionID = args[1]
		default:
			return usage("/new-order <persona|org> <id>")
		}
		handleNewOrder(ctx, reader, out, svc, cliente)

	case "transition":
		if len(args) < 2 {
			return usage("/transition <id> <estado>")
		}
		target, err := core.ParseOrderState(args[1])
		if err != nil {
			return cart, err
		}
		res, err := svc.RequestTransition(ctx, app.TransitionRequest{OrderID: args[0], Target: target, Actor: "caja " + tid})
		if err != nil {
			return cart, err
		}
		printOrderDetail(out, res)

	case "pay-status":
		if len(args) < 2 {
			return usage("/pay-status <id> <estado_pago>")
		}
		status, err := core.ParsePaymentState(args[1])
		if err != nil {
			return cart, err
		}
		res, err := svc.SetPaymentStatus(ctx, app.PaymentStatusRequest{OrderID: args[0], Status: status, Actor: "caja " + tid})
		if err != nil {
			return cart, err
		}
		if !res.Changed {
			fmt.Fprintf(out, "  Payment status already %s; nothing recorded.\n", status)
		}
		printOrderDetail(out, res)

	case "close":
		if len(args) < 1 {
			return usage("/close <id>")
		}
		return cart, svc.CloseOrder(ctx, args[0])

	case "methods":
		pay, err := svc.ListPaymentMethods(ctx)
		if err != nil {
			return cart, err
		}
		ship, err := svc.ListShippingMethods(ctx)
		if err != nil {
			return cart, err
		}
		printMethods(out, pay, ship)

	case "help", "h":
		printHelp(out)

	case "exit", "quit", "q":
		return cart, errExit

	default:
		fmt.Fprintf(out, "Unknown command: /%s  (type /help for all commands)\n", cmd)
	}
	return cart, nil
}
