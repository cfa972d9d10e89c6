package routes

import (
	"gmp-system/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runBatchRecordRouter(secureGroup *echo.Group, brCtrl *controllers.BatchRecordController, timelineCtrl *controllers.TimelineController) {
	secureGroup.POST("/batch-records", brCtrl.Create)
	secureGroup.GET("/batch-records", brCtrl.List)
	secureGroup.GET("/batch-records/:id", brCtrl.GetByID)
	secureGroup.GET("/batch-records/:id/timeline", timelineCtrl.GetCaseTimeline)

	secureGroup.POST("/batch-records/:id/start", brCtrl.Start)
	secureGroup.POST("/batch-records/:id/steps/:stepId/complete", brCtrl.CompleteStep)
	secureGroup.POST("/batch-records/:id/submit-review", brCtrl.SubmitReview)
	secureGroup.POST("/batch-records/:id/review", brCtrl.Review)
	secureGroup.POST("/batch-records/:id/approve", brCtrl.Approve)
	secureGroup.POST("/batch-records/:id/reject", brCtrl.Reject)
}
