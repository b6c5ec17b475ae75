package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	ledgerdomain "github.com/soupfinance/soupfinance/internal/ledgeraccount/domain"
)

type listLedgerAccountsQuery struct {
	PageToken       string `form:"page_token"`
	PageSize        int32  `form:"page_size"`
	Type            string `form:"type"`
	IncludeArchived bool   `form:"include_archived"`
}

func (s *Server) ListLedgerAccounts(c *gin.Context) {
	var query listLedgerAccountsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.ledgerSvc.List(c.Request.Context(), ledgerdomain.ListLedgerAccountRequest{
		PageToken:       strings.TrimSpace(query.PageToken),
		PageSize:        query.PageSize,
		Type:            strings.TrimSpace(query.Type),
		IncludeArchived: query.IncludeArchived,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Accounts, "page_info": resp.PageInfo})
}

func (s *Server) CreateLedgerAccount(c *gin.Context) {
	var req ledgerdomain.CreateLedgerAccountRequest
	if err := c.ShouldBind(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	created, err := s.ledgerSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": created})
}

func (s *Server) GetLedgerAccountByID(c *gin.Context) {
	item, err := s.ledgerSvc.GetByID(c.Request.Context(), ledgerdomain.GetLedgerAccountRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) UpdateLedgerAccount(c *gin.Context) {
	var req ledgerdomain.UpdateLedgerAccountRequest
	if err := c.ShouldBind(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	updated, err := s.ledgerSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": updated})
}
