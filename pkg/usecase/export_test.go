package usecase

// BuildChatSystemPrompt is exported for testing
var BuildChatSystemPrompt = buildChatSystemPrompt

// InterpretModelOutput is exported for testing
var InterpretModelOutput = interpretModelOutput

// BuildTranscript is exported for testing
var BuildTranscript = buildTranscript

// MaybeSummarize is exported for testing
var MaybeSummarize = (*UseCases).maybeSummarize

// AssembleContext is exported for testing
var AssembleContext = (*UseCases).assembleContext

// DashboardFallbackText is exported for testing
const DashboardFallbackText = dashboardFallbackText

// EmptyReplyText is exported for testing
const EmptyReplyText = emptyReplyText
