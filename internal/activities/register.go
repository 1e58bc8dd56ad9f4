package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.ExtractTextActivity)
	w.RegisterActivity(a.PersistExtractionActivity)
	w.RegisterActivity(a.AnalyzeDocumentActivity)
	w.RegisterActivity(a.PersistAnalysisActivity)
	w.RegisterActivity(a.GenerateSimulationActivity)
	w.RegisterActivity(a.PersistSimulationActivity)
	w.RegisterActivity(a.CheckExistingSimulationActivity)
	w.RegisterActivity(a.TranslateDocumentActivity)
	w.RegisterActivity(a.TranslateAnalysisActivity)
	w.RegisterActivity(a.TranslateSimulationActivity)
	w.RegisterActivity(a.UpdateDocumentStatusActivity)
	w.RegisterActivity(a.LogLLMCallActivity)
}
