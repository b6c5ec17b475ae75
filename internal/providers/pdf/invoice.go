package pdf

import (
	"context"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type MarotoProvider struct{}

func New() Provider {
	return &MarotoProvider{}
}

func (p *MarotoProvider) RenderInvoice(ctx context.Context, doc InvoiceDocument) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(8, "Invoice", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, doc.Status, props.Text{
			Size:  12,
			Align: align.Right,
		}),
	)

	metaLines := []struct{ label, value string }{
		{"Invoice number", doc.InvoiceNumber},
		{"Date of issue", doc.IssueDate},
		{"Date due", doc.DueDate},
	}
	if doc.PaymentTerms != "" {
		metaLines = append(metaLines, struct{ label, value string }{"Payment terms", doc.PaymentTerms})
	}
	if doc.PurchaseOrderNumber != "" {
		metaLines = append(metaLines, struct{ label, value string }{"PO number", doc.PurchaseOrderNumber})
	}
	meta := col.New(6)
	for i, line := range metaLines {
		meta.Add(text.New(line.label+": "+line.value, props.Text{Top: float64(i * 4)}))
	}
	m.AddRow(20, meta, col.New(6))

	m.AddRow(35,
		col.New(6).Add(
			text.New(doc.OrgName, props.Text{Style: fontstyle.Bold}),
			text.New(doc.OrgAddress, props.Text{Top: 5}),
			text.New(doc.OrgEmail, props.Text{Top: 10}),
		),
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(doc.BillToName, props.Text{Top: 5}),
			text.New(doc.BillToAddress, props.Text{Top: 10}),
			text.New(doc.BillToEmail, props.Text{Top: 15}),
		),
	)

	// Table header
	m.AddRow(10,
		text.NewCol(4, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(1, "Disc %", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(1, "Tax %", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range doc.Items {
		m.AddRow(8,
			text.NewCol(4, item.Description, props.Text{Size: 9}),
			text.NewCol(2, item.Quantity, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(1, item.DiscountPercent, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(1, item.TaxRate, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	summary := [][2]string{
		{"Subtotal", doc.Subtotal},
		{"Discount", doc.Discount},
		{"Tax", doc.Tax},
		{"Total due", doc.Total},
	}
	for _, line := range summary {
		m.AddRow(7,
			col.New(8),
			text.NewCol(2, line[0], props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
			text.NewCol(2, line[1]+" "+doc.Currency, props.Text{Size: 9, Align: align.Right}),
		)
	}

	if doc.Notes != "" {
		m.AddRow(15,
			text.NewCol(12, doc.Notes, props.Text{Size: 9, Top: 4}),
		)
	}

	rendered, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return rendered.GetBytes(), nil
}
