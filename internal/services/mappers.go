package services

import (
	"time"

	"gmp-system/internal/dto"
	"gmp-system/internal/entities"
	"gmp-system/internal/repositories"
	"gmp-system/pkg/utils"
)

const timeFormat = "2006-01-02 15:04:05"

func fmtTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format(timeFormat)
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func caseToDTO(c *entities.Case) *dto.CaseDTO {
	return &dto.CaseDTO{
		ID:         c.ID,
		CaseNumber: c.CaseNumber,
		CaseType:   c.CaseType,
		Status:     c.Status,
		Title:      c.Title,
		BatchID:    c.BatchID,
		CreatedBy:  c.CreatedBy,

		TestName:           strOrEmpty(c.TestName),
		ResultValue:        c.ResultValue,
		SpecificationLimit: strOrEmpty(c.SpecificationLimit),
		Conclusion:         strOrEmpty(c.Conclusion),
		RootCause:          strOrEmpty(c.RootCause),
		CorrectiveAction:   strOrEmpty(c.CorrectiveAction),
		PreventiveAction:   strOrEmpty(c.PreventiveAction),
		FinalConclusion:    strOrEmpty(c.FinalConclusion),
		InvestigatorID:     c.InvestigatorID,
		Severity:           strOrEmpty(c.Severity),
		Description:        strOrEmpty(c.Description),

		Phase1StartedAt:        fmtTime(c.Phase1StartedAt),
		Phase1CompletedAt:      fmtTime(c.Phase1CompletedAt),
		Phase2StartedAt:        fmtTime(c.Phase2StartedAt),
		Phase2CompletedAt:      fmtTime(c.Phase2CompletedAt),
		InvestigationStartedAt: fmtTime(c.InvestigationStartedAt),
		StartedAt:              fmtTime(c.StartedAt),
		CAPAApprovedAt:         fmtTime(c.CAPAApprovedAt),
		ApprovedAt:             fmtTime(c.ApprovedAt),
		RejectedAt:             fmtTime(c.RejectedAt),
		ClosedAt:               fmtTime(c.ClosedAt),

		CreatedAt: c.CreatedAt.Local().Format(timeFormat),
		UpdatedAt: fmtTime(c.UpdatedAt),
	}
}

func stepToDTO(s *entities.BatchRecordStep) dto.BatchRecordStepDTO {
	return dto.BatchRecordStepDTO{
		ID:          s.ID,
		StepNumber:  s.StepNumber,
		Name:        s.Name,
		Status:      s.Status,
		CompletedBy: s.CompletedBy,
		CompletedAt: fmtTime(s.CompletedAt),
	}
}

func auditItemToDTO(item *repositories.AuditItem) dto.AuditEntryDTO {
	return dto.AuditEntryDTO{
		ID:         item.ID,
		UserID:     item.UserID,
		ActorFio:   utils.NullStringToString(item.ActorFio),
		Action:     item.Action,
		EntityType: item.EntityType,
		EntityID:   item.EntityID,
		OldValues:  strOrEmpty(item.OldValues),
		NewValues:  strOrEmpty(item.NewValues),
		CreatedAt:  item.CreatedAt.Local().Format(timeFormat),
	}
}
