package shop

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/AbduManaam/F.E-Commerce-sub000/internal/backend"
)

// Invoices renders a plain-text invoice document for a fetched order. The
// numbers are the backend's; nothing is recomputed here beyond line totals
// for display.
type Invoices struct{}

type invoiceLine struct {
	Name      string
	Quantity  int
	UnitPrice float64
	LineTotal float64
}

type invoiceData struct {
	Number   string
	Date     string
	Customer string
	Email    string
	Lines    []invoiceLine
	Total    float64
}

var invoiceTmpl = template.Must(template.New("invoice").Parse(strings.TrimLeft(`
INVOICE {{.Number}}
Date: {{.Date}}

Billed to: {{.Customer}} <{{.Email}}>

{{printf "%-40s %5s %12s %12s" "Item" "Qty" "Unit" "Total"}}
{{range .Lines}}{{printf "%-40s %5d %12.2f %12.2f" .Name .Quantity .UnitPrice .LineTotal}}
{{end}}
{{printf "%59s %12.2f" "TOTAL" .Total}}
`, "\n")))

func (Invoices) Render(order *backend.Order, user *backend.User) (string, error) {
	data := invoiceData{
		Number:   fmt.Sprintf("INV-%s", order.ID),
		Date:     invoiceDate(order.CreatedAt),
		Customer: user.Name,
		Email:    user.Email,
		Total:    order.Total,
	}
	for _, item := range order.Items {
		data.Lines = append(data.Lines, invoiceLine{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
			LineTotal: float64(item.Quantity) * item.Price,
		})
	}

	var sb strings.Builder
	if err := invoiceTmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func invoiceDate(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format("2006-01-02")
}
