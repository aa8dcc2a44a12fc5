package ocr

// Action is the combined OCR decision for one Process call. The
// file-existence check is the orchestrator's idempotency short-circuit; the
// engine flags are the authoritative per-page decision when OCR does run.
type Action struct {
	// Run is false when a previous OCR output can be reused as-is.
	Run bool
	// SkipText tells the engine not to overwrite pages that already carry
	// a text layer.
	SkipText bool
	// Force tells the engine to re-OCR every page regardless of existing
	// text.
	Force bool
}

// Plan resolves (existing OCR output present?, forceOcr, skipText) into the
// action to take:
//
//	hasOutput && !force  -> reuse the existing output, no engine call
//	otherwise            -> run the engine with both flags passed through
func Plan(hasOutput, force, skipText bool) Action {
	if hasOutput && !force {
		return Action{}
	}
	return Action{Run: true, SkipText: skipText, Force: force}
}
