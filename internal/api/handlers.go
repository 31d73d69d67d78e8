package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"simventas/internal/sales"
	"simventas/internal/sheet"
)

type rowsRequest struct {
	Rows []sales.Candidate `json:"rows"`
}

type deleteRequest struct {
	Numeros []string `json:"numeros"`
}

type scanRequest struct {
	Text  string `json:"text"`
	Apply bool   `json:"apply"`
}

func (s *Server) listMonths(c *gin.Context) {
	months, err := s.sales.ListMonths(c.Request.Context())
	if err != nil {
		s.internalError(c, "list months", err)
		return
	}
	success(c, http.StatusOK, "months", months)
}

func (s *Server) listSales(c *gin.Context) {
	recs, err := s.sales.ListSales(c.Request.Context(), c.Param("month"))
	if err != nil {
		s.serviceError(c, "list sales", err)
		return
	}
	success(c, http.StatusOK, fmt.Sprintf("%d registros", len(recs)), recs)
}

func (s *Server) getSale(c *gin.Context) {
	rec, ok, err := s.sales.GetSale(c.Request.Context(), c.Param("month"), c.Param("numero"))
	if err != nil {
		s.serviceError(c, "get sale", err)
		return
	}
	if !ok {
		fail(c, http.StatusNotFound, "registro no encontrado", nil)
		return
	}
	success(c, http.StatusOK, "registro", rec)
}

func (s *Server) runOperation(c *gin.Context) {
	op, ok := s.authorize(c, c.Param("operation"))
	if !ok {
		return
	}
	var req rowsRequest
	// Numbers stay json.Number so long ICCIDs keep every digit.
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	s.reconcile(c, op, req.Rows)
}

// uploadOperation reads the "file" form field as a workbook and projects its
// rows onto the canonical fields before reconciling.
func (s *Server) uploadOperation(c *gin.Context) {
	op, ok := s.authorize(c, c.Param("operation"))
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "file is required", err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "cannot open upload", err)
		return
	}
	defer f.Close()

	rows, err := sheet.ReadRows(f)
	if err != nil {
		fail(c, http.StatusBadRequest, "cannot read workbook", err)
		return
	}
	batch, dropped := sales.ProjectRows(rows)
	if dropped > 0 {
		s.logger.Info("upload rows dropped", zap.String("file", fh.Filename), zap.Int("dropped", dropped))
	}
	s.reconcile(c, op, batch)
}

func (s *Server) reconcile(c *gin.Context, op sales.Operation, batch []sales.Candidate) {
	if op == sales.OpDeleteSales {
		fail(c, http.StatusBadRequest, "use DELETE to remove sales", nil)
		return
	}
	out, err := s.sales.Run(c.Request.Context(), op, c.Param("month"), batch)
	if err != nil {
		s.serviceError(c, string(op), err)
		return
	}
	success(c, http.StatusOK, string(op), out)
}

func (s *Server) deleteSales(c *gin.Context) {
	if _, ok := s.authorize(c, string(sales.OpDeleteSales)); !ok {
		return
	}
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	out, err := s.sales.DeleteSales(c.Request.Context(), c.Param("month"), req.Numeros)
	if err != nil {
		s.serviceError(c, "delete sales", err)
		return
	}
	success(c, http.StatusOK, string(sales.OpDeleteSales), out)
}

func (s *Server) template(c *gin.Context) {
	op, err := sales.ParseOperation(c.Param("operation"))
	if err != nil {
		fail(c, http.StatusNotFound, "unknown operation", err)
		return
	}
	cols, err := sales.TemplateColumns(op)
	if err != nil {
		fail(c, http.StatusNotFound, "unknown operation", err)
		return
	}
	writeWorkbook(c, "plantilla_"+string(op)+".xlsx")
	if err := sheet.WriteTemplate(c.Writer, cols); err != nil {
		s.logger.Error("template write failed", zap.String("operation", string(op)), zap.Error(err))
	}
}

func (s *Server) export(c *gin.Context) {
	month := c.Param("month")
	recs, err := s.sales.ListSales(c.Request.Context(), month)
	if err != nil {
		s.serviceError(c, "export", err)
		return
	}
	writeWorkbook(c, month+".xlsx")
	if err := sheet.ExportSales(c.Writer, month, recs); err != nil {
		s.logger.Error("export write failed", zap.String("month", month), zap.Error(err))
	}
}

// scanMatch previews matches; with apply it also marks OK matches registered,
// which needs the updateClientInfo permission.
func (s *Server) scanMatch(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	month := c.Param("month")
	if !req.Apply {
		matches, err := s.scan.Match(c.Request.Context(), month, req.Text)
		if err != nil {
			s.serviceError(c, "scan", err)
			return
		}
		success(c, http.StatusOK, "scan", matches)
		return
	}
	if _, ok := s.authorize(c, string(sales.OpUpdateClientInfo)); !ok {
		return
	}
	report, err := s.scan.Apply(c.Request.Context(), month, req.Text)
	if err != nil {
		s.serviceError(c, "scan", err)
		return
	}
	success(c, http.StatusOK, "scan", report)
}

// authorize resolves the operation and checks the caller's role for it.
func (s *Server) authorize(c *gin.Context, name string) (sales.Operation, bool) {
	op, err := sales.ParseOperation(name)
	if err != nil {
		fail(c, http.StatusNotFound, "unknown operation", err)
		return "", false
	}
	user, ok := currentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, headerUserID+" header required", nil)
		return "", false
	}
	if !sales.Allowed(user.Role, op) {
		fail(c, http.StatusForbidden, fmt.Sprintf("role %s may not run %s", user.Role, op), nil)
		return "", false
	}
	return op, true
}

func (s *Server) serviceError(c *gin.Context, what string, err error) {
	switch {
	case errors.Is(err, sales.ErrMonthRequired), errors.Is(err, sales.ErrInvalidMonth), errors.Is(err, sales.ErrUpdatesRequired):
		fail(c, http.StatusBadRequest, what+" rejected", err)
	case errors.Is(err, sales.ErrUnknownOperation):
		fail(c, http.StatusNotFound, "unknown operation", err)
	default:
		s.internalError(c, what, err)
	}
}

func (s *Server) internalError(c *gin.Context, what string, err error) {
	s.logger.Error("request failed", zap.String("op", what), zap.Error(err))
	fail(c, http.StatusInternalServerError, what+" failed", nil)
}

func writeWorkbook(c *gin.Context, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
}
