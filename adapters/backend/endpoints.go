package backend

// Backend routes consumed by the dispatchers
const (
	PathScanDisease       = "/scan_disease"
	PathSmartPlan         = "/generate-smart-plan"
	PathExecutionPlan     = "/generate-execution-plan"
	PathMarketTrends      = "/get-market-trends"
	PathAdviseCrop        = "/advise-crop"
	PathFarmPlan          = "/farm-plan"
	PathHealth            = "/health"
	FieldFile             = "file"
	FieldLanguage         = "language"
	HeaderRequestID       = "X-Request-ID"
	maxResponseBodyBytes  = 8 << 20
	defaultUploadFilename = "leaf.jpg"
)
