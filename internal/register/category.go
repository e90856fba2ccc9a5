package register

import (
	"strings"

	"github.com/hyperifyio/carrierscope/internal/domain"
)

// Classify returns the first category, in domain.Categories order, whose
// label occurs anywhere in context. Priority follows list order, not the
// position of the label in the text. Defaults to MISCELLANEOUS.
func Classify(context string) domain.Category {
	if c, ok := containedCategory(context); ok {
		return c
	}
	return domain.CategoryMiscellaneous
}

func containedCategory(text string) (domain.Category, bool) {
	for _, c := range domain.Categories {
		if strings.Contains(text, string(c)) {
			return c, true
		}
	}
	return "", false
}

// headingCategory matches text that is exactly a category label.
func headingCategory(text string) (domain.Category, bool) {
	for _, c := range domain.Categories {
		if text == string(c) {
			return c, true
		}
	}
	return "", false
}
