package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/soupfinance/soupfinance/internal/invoice/domain"
	"github.com/soupfinance/soupfinance/pkg/formbind"
)

// invoiceItemsFormPrefix matches the indexed field names posted by the
// invoice editor, e.g. invoiceItemList[0].description.
const invoiceItemsFormPrefix = "invoiceItemList"

type lineItemPayload struct {
	ID              string          `json:"id"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

type saveInvoicePayload struct {
	ID                  string            `json:"id"`
	ClientID            string            `json:"client_id"`
	Currency            string            `json:"currency"`
	InvoiceDate         string            `json:"invoice_date"`
	PaymentDate         string            `json:"payment_date"`
	Notes               string            `json:"notes"`
	PurchaseOrderNumber string            `json:"purchase_order_number"`
	Items               []lineItemPayload `json:"items"`
}

type saveInvoiceForm struct {
	ID                  string `form:"id"`
	ClientID            string `form:"clientId"`
	Currency            string `form:"currency"`
	InvoiceDate         string `form:"invoiceDate"`
	PaymentDate         string `form:"paymentDate"`
	Notes               string `form:"notes"`
	PurchaseOrderNumber string `form:"purchaseOrderNumber"`
}

func parseDateField(value, field string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", trimmed)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, trimmed)
		if err != nil {
			return nil, newValidationError(field, "invalid_date", "invalid date")
		}
	}
	return &parsed, nil
}

func (s *Server) bindSaveInvoiceRequest(c *gin.Context) (invoicedomain.SaveInvoiceRequest, error) {
	var req invoicedomain.SaveInvoiceRequest

	if strings.HasPrefix(c.ContentType(), "application/json") {
		var payload saveInvoicePayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			return req, invalidRequestError()
		}
		invoiceDate, err := parseDateField(payload.InvoiceDate, "invoice_date")
		if err != nil {
			return req, err
		}
		paymentDate, err := parseDateField(payload.PaymentDate, "payment_date")
		if err != nil {
			return req, err
		}
		req = invoicedomain.SaveInvoiceRequest{
			ID:                  payload.ID,
			ClientID:            payload.ClientID,
			Currency:            payload.Currency,
			InvoiceDate:         invoiceDate,
			PaymentDate:         paymentDate,
			Notes:               payload.Notes,
			PurchaseOrderNumber: payload.PurchaseOrderNumber,
		}
		for _, item := range payload.Items {
			req.Items = append(req.Items, invoicedomain.LineItemInput{
				ID:              item.ID,
				Description:     item.Description,
				Quantity:        item.Quantity,
				UnitPrice:       item.UnitPrice,
				TaxRate:         item.TaxRate,
				DiscountPercent: item.DiscountPercent,
			})
		}
		return req, nil
	}

	var form saveInvoiceForm
	if err := c.ShouldBind(&form); err != nil {
		return req, invalidRequestError()
	}
	invoiceDate, err := parseDateField(form.InvoiceDate, "invoice_date")
	if err != nil {
		return req, err
	}
	paymentDate, err := parseDateField(form.PaymentDate, "payment_date")
	if err != nil {
		return req, err
	}

	items, err := formbind.DecodeItems(c.Request.PostForm, invoiceItemsFormPrefix)
	if err != nil {
		return req, err
	}

	req = invoicedomain.SaveInvoiceRequest{
		ID:                  form.ID,
		ClientID:            form.ClientID,
		Currency:            form.Currency,
		InvoiceDate:         invoiceDate,
		PaymentDate:         paymentDate,
		Notes:               form.Notes,
		PurchaseOrderNumber: form.PurchaseOrderNumber,
	}
	for _, item := range items {
		req.Items = append(req.Items, invoicedomain.LineItemInput{
			ID:              item.ID,
			Description:     item.Description,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			TaxRate:         item.TaxRate,
			DiscountPercent: item.DiscountPercent,
		})
	}
	return req, nil
}

// SaveInvoice creates or updates a draft. The `send` parameter turns
// the request into save-and-send; nothing is sent unless the save
// succeeds.
func (s *Server) SaveInvoice(c *gin.Context) {
	req, err := s.bindSaveInvoiceRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	send := false
	switch strings.ToLower(strings.TrimSpace(c.DefaultQuery("send", c.PostForm("send")))) {
	case "1", "true", "yes":
		send = true
	}

	var resp invoicedomain.InvoiceResponse
	if send {
		resp, err = s.invoiceSvc.SaveAndSend(c.Request.Context(), req)
	} else {
		resp, err = s.invoiceSvc.Save(c.Request.Context(), req)
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type listInvoicesQuery struct {
	PageToken   string `form:"page_token"`
	PageSize    int32  `form:"page_size"`
	Status      string `form:"status"`
	ClientID    string `form:"client_id"`
	CreatedFrom string `form:"created_from"`
	CreatedTo   string `form:"created_to"`
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query listInvoicesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	createdFrom, err := parseDateField(query.CreatedFrom, "created_from")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	createdTo, err := parseDateField(query.CreatedTo, "created_to")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		PageToken:   strings.TrimSpace(query.PageToken),
		PageSize:    query.PageSize,
		Status:      strings.TrimSpace(query.Status),
		ClientID:    strings.TrimSpace(query.ClientID),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Invoices, "page_info": resp.PageInfo})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	item, err := s.invoiceSvc.GetByID(c.Request.Context(), invoicedomain.GetInvoiceRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) SendInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.Send(c.Request.Context(), invoicedomain.GetInvoiceRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkInvoicePaid(c *gin.Context) {
	resp, err := s.invoiceSvc.MarkPaid(c.Request.Context(), invoicedomain.GetInvoiceRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) VoidInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.Void(c.Request.Context(), invoicedomain.GetInvoiceRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RenderInvoicePDF(c *gin.Context) {
	pdfBytes, err := s.invoiceSvc.RenderPDF(c.Request.Context(), invoicedomain.GetInvoiceRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
