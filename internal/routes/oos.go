package routes

import (
	"gmp-system/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runOOSRouter(secureGroup *echo.Group, oosCtrl *controllers.OOSController, timelineCtrl *controllers.TimelineController) {
	secureGroup.POST("/oos", oosCtrl.Create)
	secureGroup.GET("/oos", oosCtrl.List)
	secureGroup.GET("/oos/:id", oosCtrl.GetByID)
	secureGroup.GET("/oos/:id/timeline", timelineCtrl.GetCaseTimeline)

	secureGroup.POST("/oos/:id/start-phase1", oosCtrl.StartPhase1)
	secureGroup.POST("/oos/:id/complete-phase1", oosCtrl.CompletePhase1)
	secureGroup.POST("/oos/:id/start-phase2", oosCtrl.StartPhase2)
	secureGroup.POST("/oos/:id/complete-phase2", oosCtrl.CompletePhase2)
	secureGroup.POST("/oos/:id/propose-capa", oosCtrl.ProposeCAPA)
	secureGroup.POST("/oos/:id/approve-capa", oosCtrl.ApproveCAPA)
	secureGroup.POST("/oos/:id/start-implementation", oosCtrl.StartImplementation)
	secureGroup.POST("/oos/:id/close", oosCtrl.Close)
}
