package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	bankdomain "github.com/soupfinance/soupfinance/internal/bankaccount/domain"
)

type listBankAccountsQuery struct {
	PageToken string `form:"page_token"`
	PageSize  int32  `form:"page_size"`
}

func (s *Server) ListBankAccounts(c *gin.Context) {
	var query listBankAccountsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.bankSvc.List(c.Request.Context(), bankdomain.ListBankAccountRequest{
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Accounts, "page_info": resp.PageInfo})
}

func (s *Server) CreateBankAccount(c *gin.Context) {
	var req bankdomain.CreateBankAccountRequest
	if err := c.ShouldBind(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	created, err := s.bankSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": created})
}

func (s *Server) GetBankAccountByID(c *gin.Context) {
	item, err := s.bankSvc.GetByID(c.Request.Context(), bankdomain.GetBankAccountRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}
