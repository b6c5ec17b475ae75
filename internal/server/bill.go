package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	billdomain "github.com/soupfinance/soupfinance/internal/bill/domain"
	"github.com/soupfinance/soupfinance/pkg/formbind"
)

const billItemsFormPrefix = "billItemList"

type saveBillPayload struct {
	ID        string            `json:"id"`
	VendorID  string            `json:"vendor_id"`
	Currency  string            `json:"currency"`
	Reference string            `json:"reference"`
	BillDate  string            `json:"bill_date"`
	DueDate   string            `json:"due_date"`
	Notes     string            `json:"notes"`
	Items     []lineItemPayload `json:"items"`
}

type saveBillForm struct {
	ID        string `form:"id"`
	VendorID  string `form:"vendorId"`
	Currency  string `form:"currency"`
	Reference string `form:"reference"`
	BillDate  string `form:"billDate"`
	DueDate   string `form:"dueDate"`
	Notes     string `form:"notes"`
}

func (s *Server) bindSaveBillRequest(c *gin.Context) (billdomain.SaveBillRequest, error) {
	var req billdomain.SaveBillRequest

	if strings.HasPrefix(c.ContentType(), "application/json") {
		var payload saveBillPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			return req, invalidRequestError()
		}
		billDate, err := parseDateField(payload.BillDate, "bill_date")
		if err != nil {
			return req, err
		}
		dueDate, err := parseDateField(payload.DueDate, "due_date")
		if err != nil {
			return req, err
		}
		req = billdomain.SaveBillRequest{
			ID:        payload.ID,
			VendorID:  payload.VendorID,
			Currency:  payload.Currency,
			Reference: payload.Reference,
			BillDate:  billDate,
			DueDate:   dueDate,
			Notes:     payload.Notes,
		}
		for _, item := range payload.Items {
			req.Items = append(req.Items, billdomain.LineItemInput{
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

	var form saveBillForm
	if err := c.ShouldBind(&form); err != nil {
		return req, invalidRequestError()
	}
	billDate, err := parseDateField(form.BillDate, "bill_date")
	if err != nil {
		return req, err
	}
	dueDate, err := parseDateField(form.DueDate, "due_date")
	if err != nil {
		return req, err
	}

	items, err := formbind.DecodeItems(c.Request.PostForm, billItemsFormPrefix)
	if err != nil {
		return req, err
	}

	req = billdomain.SaveBillRequest{
		ID:        form.ID,
		VendorID:  form.VendorID,
		Currency:  form.Currency,
		Reference: form.Reference,
		BillDate:  billDate,
		DueDate:   dueDate,
		Notes:     form.Notes,
	}
	for _, item := range items {
		req.Items = append(req.Items, billdomain.LineItemInput{
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

func (s *Server) SaveBill(c *gin.Context) {
	req, err := s.bindSaveBillRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.billSvc.Save(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type listBillsQuery struct {
	PageToken   string `form:"page_token"`
	PageSize    int32  `form:"page_size"`
	Status      string `form:"status"`
	VendorID    string `form:"vendor_id"`
	CreatedFrom string `form:"created_from"`
	CreatedTo   string `form:"created_to"`
}

func (s *Server) ListBills(c *gin.Context) {
	var query listBillsQuery
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

	resp, err := s.billSvc.List(c.Request.Context(), billdomain.ListBillRequest{
		PageToken:   strings.TrimSpace(query.PageToken),
		PageSize:    query.PageSize,
		Status:      strings.TrimSpace(query.Status),
		VendorID:    strings.TrimSpace(query.VendorID),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Bills, "page_info": resp.PageInfo})
}

func (s *Server) GetBillByID(c *gin.Context) {
	item, err := s.billSvc.GetByID(c.Request.Context(), billdomain.GetBillRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) MarkBillReceived(c *gin.Context) {
	resp, err := s.billSvc.MarkReceived(c.Request.Context(), billdomain.GetBillRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkBillPaid(c *gin.Context) {
	resp, err := s.billSvc.MarkPaid(c.Request.Context(), billdomain.GetBillRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) VoidBill(c *gin.Context) {
	resp, err := s.billSvc.Void(c.Request.Context(), billdomain.GetBillRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
