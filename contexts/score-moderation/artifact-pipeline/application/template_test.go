package application_test

import (
	"errors"
	"strings"
	"testing"

	"scorewatch/contexts/score-moderation/artifact-pipeline/application"
	domainerrors "scorewatch/contexts/score-moderation/artifact-pipeline/domain/errors"
)

func TestFillTemplate(t *testing.T) {
	template := "<html><% username %> scored <% pp-val %>pp</html>"

	filled, err := application.FillTemplate(template, map[string]string{
		"username": "cookiezi",
		"pp-val":   "727",
	})
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if filled != "<html>cookiezi scored 727pp</html>" {
		t.Fatalf("filled = %q", filled)
	}
}

func TestFillTemplateMissingValue(t *testing.T) {
	_, err := application.FillTemplate("<% username %>", map[string]string{})
	if !errors.Is(err, domainerrors.ErrTemplateInvalid) {
		t.Fatalf("err = %v, want ErrTemplateInvalid", err)
	}
}

func TestFillTemplateUnknownKey(t *testing.T) {
	_, err := application.FillTemplate("<% username %>", map[string]string{
		"username": "peppy",
		"extra":    "value",
	})
	if !errors.Is(err, domainerrors.ErrTemplateInvalid) {
		t.Fatalf("err = %v, want ErrTemplateInvalid", err)
	}
}

// The embedded thumbnail template and the assembler's value set must agree on
// the declared placeholder keys.
func TestUploadThumbnailTemplateKeys(t *testing.T) {
	template := application.UploadThumbnailTemplate()
	for _, key := range []string{
		"bg-image", "misc-colour", "misc-text", "title-colour", "username",
		"mode", "country", "userid", "artist", "title", "map-diff", "mods",
		"combo", "pp-val", "acc",
	} {
		if !strings.Contains(template, "<% "+key+" %>") {
			t.Fatalf("template missing placeholder %q", key)
		}
	}
}
