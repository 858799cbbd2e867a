package tracing

// Span names.
const (
	SpanParse   = "syntax.parse"
	SpanCompute = "decorate.compute"
	SpanReload  = "editor.reload"
)

// Span attribute keys.
const (
	AttrSourceBytes    = "source.bytes"
	AttrNodes          = "syntax.nodes"
	AttrUnresolved     = "syntax.unresolved"
	AttrRevision       = "document.revision"
	AttrFocus          = "editor.focus"
	AttrVisibleRanges  = "decorate.visible_ranges"
	AttrInstructions   = "decorate.instructions"
	AttrDropped        = "decorate.dropped"
	AttrVisited        = "decorate.visited"
	AttrReloadStrategy = "reload.strategy"
)
