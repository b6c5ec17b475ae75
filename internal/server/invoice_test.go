package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	invoicedomain "github.com/soupfinance/soupfinance/internal/invoice/domain"
)

func decimalFromString(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	parsed, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return parsed
}

type fakeInvoiceService struct {
	saveCalls     []invoicedomain.SaveInvoiceRequest
	saveSendCalls []invoicedomain.SaveInvoiceRequest
	saveErr       error
}

func (f *fakeInvoiceService) Save(ctx context.Context, req invoicedomain.SaveInvoiceRequest) (invoicedomain.InvoiceResponse, error) {
	f.saveCalls = append(f.saveCalls, req)
	return invoicedomain.InvoiceResponse{}, f.saveErr
}

func (f *fakeInvoiceService) SaveAndSend(ctx context.Context, req invoicedomain.SaveInvoiceRequest) (invoicedomain.InvoiceResponse, error) {
	f.saveSendCalls = append(f.saveSendCalls, req)
	return invoicedomain.InvoiceResponse{}, f.saveErr
}

func (f *fakeInvoiceService) Send(ctx context.Context, req invoicedomain.GetInvoiceRequest) (invoicedomain.InvoiceResponse, error) {
	return invoicedomain.InvoiceResponse{}, nil
}

func (f *fakeInvoiceService) MarkPaid(ctx context.Context, req invoicedomain.GetInvoiceRequest) (invoicedomain.InvoiceResponse, error) {
	return invoicedomain.InvoiceResponse{}, nil
}

func (f *fakeInvoiceService) Void(ctx context.Context, req invoicedomain.GetInvoiceRequest) (invoicedomain.InvoiceResponse, error) {
	return invoicedomain.InvoiceResponse{}, nil
}

func (f *fakeInvoiceService) GetByID(ctx context.Context, req invoicedomain.GetInvoiceRequest) (invoicedomain.InvoiceResponse, error) {
	return invoicedomain.InvoiceResponse{}, nil
}

func (f *fakeInvoiceService) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	return invoicedomain.ListInvoiceResponse{}, nil
}

func (f *fakeInvoiceService) RenderPDF(ctx context.Context, req invoicedomain.GetInvoiceRequest) ([]byte, error) {
	return nil, nil
}

func newInvoiceTestServer(t *testing.T) (*Server, *fakeInvoiceService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fake := &fakeInvoiceService{}

	r := gin.New()
	r.Use(ErrorHandlingMiddleware())

	s := &Server{engine: r, invoiceSvc: fake}
	r.POST("/invoices", s.SaveInvoice)

	return s, fake
}

func postForm(t *testing.T, s *Server, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func TestSaveInvoiceDecodesIndexedForm(t *testing.T) {
	s, fake := newInvoiceTestServer(t)

	form := url.Values{}
	form.Set("clientId", "12345")
	form.Set("currency", "USD")
	form.Set("invoiceDate", "2026-01-05")
	form.Set("paymentDate", "2026-02-05")
	form.Set("invoiceItemList[0].description", "Consulting")
	form.Set("invoiceItemList[0].quantity", "2")
	form.Set("invoiceItemList[0].unitPrice", "150")
	form.Set("invoiceItemList[2].description", "Hosting")
	form.Set("invoiceItemList[2].quantity", "1")
	form.Set("invoiceItemList[2].unitPrice", "40")

	w := postForm(t, s, "/invoices", form)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, fake.saveCalls, 1)
	assert.Empty(t, fake.saveSendCalls)

	got := fake.saveCalls[0]
	assert.Equal(t, "12345", got.ClientID)
	assert.Equal(t, "USD", got.Currency)
	require.NotNil(t, got.InvoiceDate)
	assert.Equal(t, "2026-01-05", got.InvoiceDate.Format("2006-01-02"))

	require.Len(t, got.Items, 2)
	assert.Equal(t, "Consulting", got.Items[0].Description)
	assert.True(t, got.Items[0].UnitPrice.Equal(decimalFromString(t, "150")))
	assert.Equal(t, "Hosting", got.Items[1].Description)
}

func TestSaveInvoiceRejectsBadNumericBeforeService(t *testing.T) {
	s, fake := newInvoiceTestServer(t)

	form := url.Values{}
	form.Set("clientId", "12345")
	form.Set("invoiceItemList[0].description", "Consulting")
	form.Set("invoiceItemList[0].quantity", "two")

	w := postForm(t, s, "/invoices", form)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, fake.saveCalls)
	assert.Empty(t, fake.saveSendCalls)
	assert.Contains(t, w.Body.String(), "validation_error")
}

func TestSaveInvoiceRejectsBadDate(t *testing.T) {
	s, fake := newInvoiceTestServer(t)

	form := url.Values{}
	form.Set("clientId", "12345")
	form.Set("invoiceDate", "05/01/2026")
	form.Set("invoiceItemList[0].description", "Consulting")
	form.Set("invoiceItemList[0].quantity", "1")
	form.Set("invoiceItemList[0].unitPrice", "10")

	w := postForm(t, s, "/invoices", form)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, fake.saveCalls)
}

func TestSaveInvoiceSendParamRoutesToSaveAndSend(t *testing.T) {
	s, fake := newInvoiceTestServer(t)

	form := url.Values{}
	form.Set("clientId", "12345")
	form.Set("invoiceItemList[0].description", "Consulting")
	form.Set("invoiceItemList[0].quantity", "1")
	form.Set("invoiceItemList[0].unitPrice", "10")

	w := postForm(t, s, "/invoices?send=true", form)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, fake.saveCalls)
	require.Len(t, fake.saveSendCalls, 1)
}

func TestSaveInvoiceAcceptsJSONPayload(t *testing.T) {
	s, fake := newInvoiceTestServer(t)

	body := `{
		"client_id": "12345",
		"currency": "EUR",
		"invoice_date": "2026-01-05",
		"payment_date": "2026-02-05",
		"items": [
			{"description": "Consulting", "quantity": "2", "unit_price": "150"}
		]
	}`

	req := httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, fake.saveCalls, 1)

	got := fake.saveCalls[0]
	assert.Equal(t, "EUR", got.Currency)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].Quantity.Equal(decimalFromString(t, "2")))
}
