package routes

import (
	"gmp-system/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runAuditRouter(secureGroup *echo.Group, auditCtrl *controllers.AuditController) {
	secureGroup.GET("/audit", auditCtrl.List)
	secureGroup.GET("/audit/export", auditCtrl.ExportXLSX)
}
