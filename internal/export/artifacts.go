package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"resumebuilder/internal/errors"
	"resumebuilder/internal/types"
)

// TimestampLayout names one build's artifacts.
const TimestampLayout = "20060102_150405"

// Artifact kinds accepted by ResolveDownload.
const (
	KindPDF         = "pdf"
	KindHTML        = "html"
	KindJSON        = "json"
	KindCoverLetter = "cover_letter"
	KindAnalysis    = "analysis"
)

var timestampPattern = regexp.MustCompile(`^\d{8}_\d{6}$`)

type artifactKind struct {
	pattern     string
	contentType string
}

var artifactKinds = map[string]artifactKind{
	KindJSON:        {"resume_%s.json", "application/json"},
	KindHTML:        {"resume_%s.html", "text/html; charset=utf-8"},
	KindPDF:         {"resume_%s.pdf", "application/pdf"},
	KindCoverLetter: {"cover_letter_%s.txt", "text/plain; charset=utf-8"},
	KindAnalysis:    {"analysis_%s.json", "application/json"},
}

// Kinds lists the downloadable artifact kinds.
func Kinds() []string {
	return []string{KindPDF, KindHTML, KindJSON, KindCoverLetter, KindAnalysis}
}

// FileName returns the artifact file name for kind and timestamp.
func FileName(kind, ts string) string {
	return fmt.Sprintf(artifactKinds[kind].pattern, ts)
}

// ContentType returns the MIME type served for kind.
func ContentType(kind string) string {
	return artifactKinds[kind].contentType
}

func manifestFor(dir, ts string) types.ArtifactManifest {
	return types.ArtifactManifest{
		Timestamp:   ts,
		JSON:        filepath.Join(dir, FileName(KindJSON, ts)),
		HTML:        filepath.Join(dir, FileName(KindHTML, ts)),
		PDF:         filepath.Join(dir, FileName(KindPDF, ts)),
		CoverLetter: filepath.Join(dir, FileName(KindCoverLetter, ts)),
		Analysis:    filepath.Join(dir, FileName(KindAnalysis, ts)),
	}
}

// ValidTimestamp reports whether ts has the YYYYMMDD_HHMMSS shape.
func ValidTimestamp(ts string) bool {
	return timestampPattern.MatchString(ts)
}

// ResolveDownload maps a timestamp and artifact kind to an existing file under
// outputDir. The timestamp and kind are checked before any filesystem access.
func ResolveDownload(outputDir, ts, kind string) (path, contentType string, err error) {
	if !ValidTimestamp(ts) {
		return "", "", errors.NewFieldValidationError("timestamp", errors.ErrCodeInvalidTimestamp,
			"Invalid timestamp format, expected YYYYMMDD_HHMMSS")
	}
	k, ok := artifactKinds[kind]
	if !ok {
		return "", "", errors.NewFieldValidationError("file_type", errors.ErrCodeInvalidFileType,
			fmt.Sprintf("Invalid file type, expected one of: %s", strings.Join(Kinds(), ", ")))
	}

	root, err := filepath.Abs(outputDir)
	if err != nil {
		return "", "", errors.NewIOError(errors.ErrCodeFileNotReadable, "Failed to resolve output directory", err)
	}
	candidate := filepath.Join(root, fmt.Sprintf(k.pattern, ts))
	if !within(root, candidate) {
		return "", "", pathEscape()
	}

	if _, err := os.Stat(candidate); err != nil {
		if os.IsNotExist(err) {
			return "", "", errors.NewIOError(errors.ErrCodeArtifactNotFound, "File not found", err)
		}
		return "", "", errors.NewIOError(errors.ErrCodeFileNotReadable, "Failed to read artifact", err)
	}

	// A symlinked artifact must still land inside the real output directory.
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", "", errors.NewIOError(errors.ErrCodeFileNotReadable, "Failed to resolve output directory", err)
	}
	realPath, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		return "", "", errors.NewIOError(errors.ErrCodeArtifactNotFound, "File not found", err)
	}
	if !within(realRoot, realPath) {
		return "", "", pathEscape()
	}

	return candidate, k.contentType, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

func pathEscape() error {
	return errors.NewIOError(errors.ErrCodePathEscape, "Access denied", nil)
}
