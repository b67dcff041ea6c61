package bot

const (
	msgWelcome = "Before starting the analysis, please make your group list " +
		"visible to everyone in your privacy settings."
	msgWelcomeBack = "You have already completed an analysis, so you can go " +
		"straight to your recommendations."
	msgPleaseWait = "Your analysis is still running. Please wait."
	msgAnalysisStarted = "Analysis started. It may take a few minutes, " +
		"depending on how many groups you follow."
	msgAccessDenied = "Your group list is private, so there is nothing to " +
		"analyze. Open it in your privacy settings and try again."
	msgAnalysisFailed  = "The analysis did not work out this time. Try again?"
	msgNoMatches       = "No catalogued groups match your interests yet. Try again?"
	msgSummaryHeader   = "The analysis shows you are interested in these group categories:"
	msgAdminMode       = "Admin mode. What shall we do?"
	msgShallWeStart    = "Shall we start the analysis?"
	msgAlreadyAdded    = "Already added."
	msgDatasetComplete = "Dataset complete: no candidates left to label."
)
