package routes

import (
	"gmp-system/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runAuthRouter(api *echo.Group, authCtrl *controllers.AuthController) {
	api.POST("/auth/login", authCtrl.Login)
}
