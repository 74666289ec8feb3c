package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/emprestei/internal/application/dto"
	"github.com/jhoicas/emprestei/internal/application/loans"
	"github.com/jhoicas/emprestei/internal/application/report"
	"github.com/jhoicas/emprestei/internal/domain"
)

// ReportHandler descarga de reportes PDF.
type ReportHandler struct {
	uc *report.LoanReportUseCase
}

// NewReportHandler construye el handler de reportes.
func NewReportHandler(uc *report.LoanReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Loans godoc
// @Summary      Reporte PDF de empréstimos
// @Description  Empréstimos donde la loja del usuario es origen o destino.
// @Tags         reports
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        status  query  string  false  "ativos (default) | todos"
// @Success      200     {file}    file
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/reports/loans [get]
func (h *ReportHandler) Loans(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.uc.Build(c.UserContext(), GetUserID(c), loans.ParseFilter(c.Query("status")))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "PROFILE_NOT_FOUND", Message: "el usuario no tiene perfil"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}
