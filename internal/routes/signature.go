package routes

import (
	"gmp-system/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runSignatureRouter(secureGroup *echo.Group, sigCtrl *controllers.SignatureController) {
	secureGroup.GET("/signatures/meanings", sigCtrl.ListMeanings)
	secureGroup.POST("/signatures/sign", sigCtrl.Sign)
	secureGroup.POST("/signatures/verify-password", sigCtrl.VerifyPassword)
	secureGroup.GET("/signatures/:id", sigCtrl.GetByID)

	// Ловушки: запись попытки в аудит и отказ. Подпись неизменяема.
	secureGroup.PUT("/signatures/:id", sigCtrl.BlockModification)
	secureGroup.PATCH("/signatures/:id", sigCtrl.BlockModification)
	secureGroup.DELETE("/signatures/:id", sigCtrl.BlockModification)
}
