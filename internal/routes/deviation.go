package routes

import (
	"gmp-system/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runDeviationRouter(secureGroup *echo.Group, devCtrl *controllers.DeviationController, timelineCtrl *controllers.TimelineController) {
	secureGroup.POST("/deviations", devCtrl.Create)
	secureGroup.GET("/deviations", devCtrl.List)
	secureGroup.GET("/deviations/:id", devCtrl.GetByID)
	secureGroup.GET("/deviations/:id/timeline", timelineCtrl.GetCaseTimeline)

	secureGroup.POST("/deviations/:id/start-investigation", devCtrl.StartInvestigation)
	secureGroup.POST("/deviations/:id/propose-capa", devCtrl.ProposeCAPA)
	secureGroup.POST("/deviations/:id/approve", devCtrl.Approve)
	secureGroup.POST("/deviations/:id/start-implementation", devCtrl.StartImplementation)
	secureGroup.POST("/deviations/:id/close", devCtrl.Close)
}
