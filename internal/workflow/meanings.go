package workflow

// Формулировки электронных подписей. Словарь - версионируемая конфигурация:
// он передаётся в сервис подписей при сборке приложения, а не читается из
// глобального состояния, поэтому деплой или тест могут подменить его без
// перекомпиляции.
const (
	MeaningCAPAApproved       = "CAPA plan reviewed and approved"
	MeaningConclusionApproved = "Investigation conclusion approved"
	MeaningResultConfirmed    = "Analytical result confirmed as valid OOS"
	MeaningResultInvalidated  = "Result invalidated due to assignable laboratory error"
	MeaningRecordReviewed     = "Reviewed and verified batch record completeness and accuracy"
	MeaningApprovedForRelease = "Approved for release"
	MeaningRejectedForRelease = "Rejected for release"
	MeaningDeviationCAPA      = "Deviation assessed and CAPA approved"
	MeaningDeviationClosure   = "Deviation closure approved"
)

// DefaultMeanings возвращает утверждённый словарь формулировок по областям.
// Формулировка вне словаря своей области отклоняется при подписании.
func DefaultMeanings() map[Scope][]string {
	return map[Scope][]string{
		ScopeQCApproval: {
			MeaningCAPAApproved,
			MeaningConclusionApproved,
			MeaningResultConfirmed,
			MeaningResultInvalidated,
		},
		ScopeBatchRelease: {
			MeaningRecordReviewed,
			MeaningApprovedForRelease,
			MeaningRejectedForRelease,
		},
		ScopeDeviationApproval: {
			MeaningDeviationCAPA,
			MeaningDeviationClosure,
		},
	}
}
