// Package ocr wraps the external OCR engine. The engine itself (ocrmypdf)
// stays an opaque binary with a fixed call contract: source PDF in,
// OCR'd PDF out, destination absent on any failure.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/Bennexy/edms-local/internal/language"
)

// ErrEngine wraps every engine failure: corrupt input, encoding errors,
// timeouts. Retry policy belongs to the caller.
var ErrEngine = errors.New("ocr engine failure")

// Engine converts a source PDF into an OCR'd PDF at dest.
type Engine interface {
	Run(ctx context.Context, source, dest string, lang language.Language, skipText, force bool) error
}

const defaultBinary = "ocrmypdf"

// CommandEngine shells out to ocrmypdf.
type CommandEngine struct {
	// Binary overrides the executable name, mainly for tests.
	Binary string
	// Timeout bounds a single engine invocation.
	Timeout time.Duration
}

func NewCommandEngine(timeout time.Duration) *CommandEngine {
	return &CommandEngine{Binary: defaultBinary, Timeout: timeout}
}

// Run invokes the engine. On any error the destination file is removed so a
// failed pass can never be mistaken for valid output.
func (e *CommandEngine) Run(ctx context.Context, source, dest string, lang language.Language, skipText, force bool) error {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	binary := e.Binary
	if binary == "" {
		binary = defaultBinary
	}

	cmd := exec.CommandContext(ctx, binary, buildArgs(source, dest, lang, skipText, force)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		_ = os.Remove(dest)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %s timed out: %v", ErrEngine, binary, ctxErr)
		}
		return fmt.Errorf("%w: %s: %v: %s", ErrEngine, binary, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return nil
}

// buildArgs assembles the fixed engine policy: recognize the document's
// language plus English, optimize and auto-rotate the output, allow lossy
// symbol compression above the 0.85 similarity threshold.
func buildArgs(source, dest string, lang language.Language, skipText, force bool) []string {
	args := []string{
		"--language", recognitionList(lang),
		"--output-type", "pdf",
		"--optimize", "3",
		"--rotate-pages",
		"--clean",
		"--clean-final",
		"--jbig2-threshold", "0.85",
	}
	if skipText {
		args = append(args, "--skip-text")
	}
	if force {
		args = append(args, "--force-ocr")
	}
	return append(args, source, dest)
}

// recognitionList yields the engine's language hint: the document language
// first when known, English always as the universal fallback.
func recognitionList(lang language.Language) string {
	if lang.Tesseract == "" || lang == language.English {
		return language.English.Tesseract
	}
	return lang.Tesseract + "+" + language.English.Tesseract
}
