package application

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	domainerrors "scorewatch/contexts/score-moderation/artifact-pipeline/domain/errors"
)

//go:embed templates/upload_thumbnail.html
var uploadThumbnailTemplate string

var placeholderPattern = regexp.MustCompile(`<%\s*([a-z0-9-]+)\s*%>`)

// FillTemplate substitutes every <% key %> placeholder. Strict both ways: a
// placeholder without a value and a value without a placeholder are each a
// validation failure, so drifted templates fail fast instead of shipping
// literal placeholder text.
func FillTemplate(template string, values map[string]string) (string, error) {
	declared := make(map[string]struct{})
	for _, match := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		declared[match[1]] = struct{}{}
	}
	for key := range declared {
		if _, ok := values[key]; !ok {
			return "", fmt.Errorf("%w: missing value for placeholder %q",
				domainerrors.ErrTemplateInvalid, key)
		}
	}
	for key := range values {
		if _, ok := declared[key]; !ok {
			return "", fmt.Errorf("%w: template declares no placeholder %q",
				domainerrors.ErrTemplateInvalid, key)
		}
	}
	filled := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		return values[key]
	})
	if strings.Contains(filled, "<%") {
		return "", fmt.Errorf("%w: unresolved placeholder remains", domainerrors.ErrTemplateInvalid)
	}
	return filled, nil
}

// UploadThumbnailTemplate returns the embedded thumbnail document.
func UploadThumbnailTemplate() string {
	return uploadThumbnailTemplate
}
